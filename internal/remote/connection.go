package remote

import (
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// worldReadable is the institution-standard mode for published images:
// the image server runs as an unprivileged user and must be able to read
// every file it serves.
const worldReadable = os.FileMode(0644)

// Connection is an SFTP session with the image server. The directory
// listing is fetched once at dial time and reused for every matching
// attempt in the run.
type Connection struct {
	client   *sftp.Client
	ssh      *ssh.Client
	imageDir string
	files    []string
}

// Dial opens an SFTP connection from a "user@host" connection string,
// authenticating through the local SSH agent, and caches the listing of
// imageDir.
func Dial(connectionString, imageDir string) (*Connection, error) {
	user, host, ok := splitConnectionString(connectionString)
	if !ok {
		return nil, fmt.Errorf("invalid SSH connection string %q, want user@host", connectionString)
	}

	sock, err := net.Dial("unix", os.Getenv("SSH_AUTH_SOCK"))
	if err != nil {
		return nil, fmt.Errorf("connecting to SSH agent: %w", err)
	}
	sshAgent := agent.NewClient(sock)

	sshClient, err := ssh.Dial("tcp", net.JoinHostPort(host, "22"), &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeysCallback(sshAgent.Signers)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", host, err)
	}

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("opening SFTP session on %s: %w", host, err)
	}

	entries, err := client.ReadDir(imageDir)
	if err != nil {
		client.Close()
		sshClient.Close()
		return nil, fmt.Errorf("listing image directory %s: %w", imageDir, err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}

	return &Connection{client: client, ssh: sshClient, imageDir: imageDir, files: files}, nil
}

// Files returns the cached image directory listing.
func (c *Connection) Files() []string {
	return c.files
}

// EnsureWorldReadable chmods a remote image to the standard published
// mode if it is not already readable by everyone.
func (c *Connection) EnsureWorldReadable(filename string) error {
	remotePath := path.Join(c.imageDir, filename)
	info, err := c.client.Stat(remotePath)
	if err != nil {
		return fmt.Errorf("checking permissions on %s: %w", remotePath, err)
	}
	if info.Mode().Perm()&0004 != 0 {
		return nil
	}
	if err := c.client.Chmod(remotePath, worldReadable); err != nil {
		return fmt.Errorf("fixing permissions on %s: %w", remotePath, err)
	}
	return nil
}

// Upload copies local image files into the remote image directory,
// overwriting any existing file of the same name.
func (c *Connection) Upload(localPaths []string) error {
	for _, localPath := range localPaths {
		if err := c.uploadOne(localPath); err != nil {
			return err
		}
	}
	return nil
}

func (c *Connection) uploadOne(localPath string) error {
	local, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", localPath, err)
	}
	defer local.Close()

	remotePath := path.Join(c.imageDir, filepath.Base(localPath))
	remote, err := c.client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", remotePath, err)
	}
	defer remote.Close()

	if _, err := io.Copy(remote, local); err != nil {
		return fmt.Errorf("uploading %s: %w", remotePath, err)
	}
	return nil
}

// Close shuts down the SFTP session and the underlying SSH connection.
func (c *Connection) Close() error {
	sftpErr := c.client.Close()
	sshErr := c.ssh.Close()
	if sftpErr != nil {
		return sftpErr
	}
	return sshErr
}

func splitConnectionString(connectionString string) (user, host string, ok bool) {
	user, host, ok = strings.Cut(connectionString, "@")
	if !ok || user == "" || host == "" {
		return "", "", false
	}
	return user, host, true
}
