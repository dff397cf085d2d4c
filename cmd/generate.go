package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bclibraries/manifester/internal/aspace"
	"github.com/bclibraries/manifester/internal/config"
	"github.com/bclibraries/manifester/internal/pipeline"
	"github.com/bclibraries/manifester/internal/records"
	"github.com/bclibraries/manifester/internal/remote"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var (
		configPath string
		imageBase  string
		sshConn    string
		imageDir   string
	)

	cmd := &cobra.Command{
		Use:   "generate [source]",
		Short: "Generate manifests, viewer pages, and a handle batch",
		Long: `Generate publishing artifacts for every record in a source.

The source is a binary MARC file (.mrc/.marc), a digitization workbook
(.xlsx), or an ArchivesSpace record URI (/repositories/...). Page images
are matched from the IIIF server's image directory over SFTP.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(args[0], configPath, imageBase, sshConn, imageDir)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file with institutional settings")
	cmd.Flags().StringVar(&imageBase, "image-base", "", "image file prefix overriding the record identifier (e.g. ms-2020-020-142452)")
	cmd.Flags().StringVar(&sshConn, "ssh", "", "IIIF server SSH connection string (e.g. florinb@scenery.bc.edu)")
	cmd.Flags().StringVar(&imageDir, "image-dir", "", "image directory on the IIIF server")

	return cmd
}

func runGenerate(source, configPath, imageBase, sshConn, imageDir string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if sshConn != "" {
		cfg.SSH = sshConn
	}
	if imageDir != "" {
		cfg.ImageDir = imageDir
	}
	if cfg.SSH == "" {
		return fmt.Errorf("no SSH connection string configured (--ssh flag or SSH_CREDENTIALS)")
	}

	links := records.Links{
		ManifestBase: cfg.ManifestBaseURL,
		HandleBase:   cfg.HandleBaseURL,
	}
	sources, err := loadSources(cfg, source, imageBase, links)
	if err != nil {
		return err
	}
	slog.Info("Loaded source records", "source", source, "records", len(sources))

	conn, err := remote.Dial(cfg.SSH, cfg.ImageDir)
	if err != nil {
		return err
	}
	defer conn.Close()

	matcher := remote.NewMatcher(conn, conn)
	return pipeline.New(cfg, matcher).Run(sources, imageBase)
}

// loadSources picks the record adapter from the source's shape: an
// ArchivesSpace URI, a workbook, or a MARC export.
func loadSources(cfg config.Config, source, imageBase string, links records.Links) ([]records.SourceRecord, error) {
	if strings.HasPrefix(source, "/repositories/") {
		return loadASpaceRecord(cfg, source, imageBase, links)
	}

	switch filepath.Ext(source) {
	case ".xlsx":
		return records.ReadWorkbook(source, links)
	case ".mrc", ".marc":
		file, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("opening MARC file: %w", err)
		}
		defer file.Close()
		return records.ReadMARCFile(file, imageBase, links)
	default:
		return nil, fmt.Errorf("unsupported source %q: want a .mrc/.marc file, an .xlsx workbook, or an ArchivesSpace URI", source)
	}
}

func loadASpaceRecord(cfg config.Config, recordURI, imageBase string, links records.Links) ([]records.SourceRecord, error) {
	if cfg.ASpaceUser == "" || cfg.ASpacePassword == "" {
		return nil, fmt.Errorf("ArchivesSpace credentials not configured (ASPACE_USER / ASPACE_PASSWD)")
	}

	client := aspace.NewClient(cfg.ASpaceBaseURL)
	if err := client.Login(cfg.ASpaceUser, cfg.ASpacePassword); err != nil {
		return nil, err
	}
	response, err := client.Lookup(recordURI)
	if err != nil {
		return nil, err
	}
	return []records.SourceRecord{records.NewASpaceRecord(response, imageBase, links)}, nil
}
