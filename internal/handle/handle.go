// Package handle accumulates Handle server batch registration files.
package handle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Batch collects the CREATE statements for one run and writes them out as
// a single batch file the Handle server's batch tool can consume.
type Batch struct {
	Prefix   string // institutional naming authority, e.g. "2345.2"
	Password string // HS_SECKEY value for the created handles

	statements []string
}

// Add appends the registration statements for one identifier. target is
// the URL the handle should resolve to.
func (b *Batch) Add(identifier, target string) {
	b.statements = append(b.statements, fmt.Sprintf(
		"CREATE %[1]s/%[2]s\n"+
			"100 HS_ADMIN 86400 1110 ADMIN 300:111111111111:%[1]s/%[2]s\n"+
			"300 HS_SECKEY 86400 1100 UTF8 %[3]s\n"+
			"201 URL 86400 1110 UTF8 %[4]s\n",
		b.Prefix, identifier, b.Password, target))
}

// Len reports how many handles the batch will create.
func (b *Batch) Len() int {
	return len(b.statements)
}

// Write saves the batch into dir as a timestamped file and returns its
// path. An empty batch writes nothing.
func (b *Batch) Write(dir string) (string, error) {
	if len(b.statements) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating handle directory: %w", err)
	}
	path := filepath.Join(dir, "handles-"+time.Now().Format("01-02-2006-15-04-05")+".txt")
	if err := os.WriteFile(path, []byte(strings.Join(b.statements, "\n")), 0644); err != nil {
		return "", fmt.Errorf("writing handle batch: %w", err)
	}
	return path, nil
}
