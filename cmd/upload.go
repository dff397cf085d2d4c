package cmd

import (
	"fmt"
	"log/slog"

	"github.com/bclibraries/manifester/internal/config"
	"github.com/bclibraries/manifester/internal/remote"
	"github.com/spf13/cobra"
)

func newUploadCmd() *cobra.Command {
	var (
		configPath string
		sshConn    string
		imageDir   string
	)

	cmd := &cobra.Command{
		Use:   "upload [files...]",
		Short: "Upload page images to the IIIF server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(args, configPath, sshConn, imageDir)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file with institutional settings")
	cmd.Flags().StringVar(&sshConn, "ssh", "", "IIIF server SSH connection string (e.g. florinb@scenery.bc.edu)")
	cmd.Flags().StringVar(&imageDir, "image-dir", "", "image directory on the IIIF server")

	return cmd
}

func runUpload(files []string, configPath, sshConn, imageDir string) error {
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

	conn, err := remote.Dial(cfg.SSH, cfg.ImageDir)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Upload(files); err != nil {
		return err
	}
	slog.Info("Uploaded images", "count", len(files), "dir", cfg.ImageDir)
	return nil
}
