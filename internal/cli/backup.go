package cli

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/amholt/bravely/internal/backup"
)

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *Context) error {
	m := backup.NewManager(ctx.Config.DocumentPath())
	path, err := m.Create()
	if err != nil {
		return err
	}
	fmt.Printf("Created backup: %s\n", filepath.Base(path))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *Context) error {
	m := backup.NewManager(ctx.Config.DocumentPath())
	backups, err := m.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Println("No backups found.")
		return nil
	}
	for _, b := range backups {
		fmt.Printf("%s  %s  %s\n", b.Timestamp.Format("2006-01-02 15:04:05"), humanize.Bytes(uint64(b.Size)), filepath.Base(b.Path))
	}
	return nil
}

type BackupRestoreCmd struct {
	Name string `arg:"" help:"Backup file name to restore."`
}

func (c *BackupRestoreCmd) Run(ctx *Context) error {
	m := backup.NewManager(ctx.Config.DocumentPath())
	if err := m.Restore(filepath.Join(m.BackupDir(), c.Name)); err != nil {
		return err
	}
	fmt.Println("Restore complete.")
	return nil
}
