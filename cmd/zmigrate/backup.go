package main

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// backupExport archives dbDir into a timestamped .tar.gz inside backupDir.
// Nothing is done if dbDir does not exist or is empty.
func backupExport(dbDir, backupDir string) error {
	entries, err := os.ReadDir(dbDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	if err := os.MkdirAll(backupDir, os.ModeDir|0755); err != nil {
		return err
	}

	target := filepath.Join(backupDir, fmt.Sprintf(
		"%s-%s.tar.gz",
		strings.ToLower(filepath.Base(dbDir)),
		time.Now().UTC().Format("20060102T150405Z"),
	))
	return archiveAndCompress(dbDir, target)
}

// archiveAndCompress writes source as a gzipped tarball at target. Entries
// are rooted at the base name of source.
func archiveAndCompress(source, target string) (err error) {
	start := time.Now()
	log.Infof("making compressed archive of %s...", source)

	info, err := os.Stat(source)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("source is not a directory")
	}

	file, err := os.Create(target)
	if err != nil {
		return err
	}
	defer func() {
		if e := file.Close(); e != nil && err == nil {
			err = e
		}
		if err != nil {
			os.Remove(target)
		}
	}()

	archiver := gzip.NewWriter(file)
	archiver.Name = filepath.Base(target)
	tarball := tar.NewWriter(archiver)

	baseDir := filepath.Base(source)
	if err = filepath.Walk(
		source, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			// Skip symlinks.
			if info.Mode()&os.ModeSymlink != 0 {
				return nil
			}
			header, err := tar.FileInfoHeader(info, info.Name())
			if err != nil {
				return err
			}
			header.Name = filepath.ToSlash(filepath.Join(
				baseDir, strings.TrimPrefix(path, source),
			))

			if err := tarball.WriteHeader(header); err != nil {
				return err
			}

			if info.IsDir() {
				return nil
			}

			file, err := os.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()
			_, err = io.Copy(tarball, file)
			return err
		},
	); err != nil {
		return err
	}

	if err = tarball.Close(); err != nil {
		return err
	}
	if err = archiver.Close(); err != nil {
		return err
	}

	elapsedTime := time.Since(start).Seconds()
	log.Infof("done in %fs", elapsedTime)
	return nil
}
