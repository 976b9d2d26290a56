// Package web serves the pages of the monitoring dashboard.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// DevModeEnv names the environment variable that makes the monitor serve the
// pages from the source tree, so that they can be edited without rebuilding.
const DevModeEnv = "HSFIFO_MONITOR_DEV"

//go:embed dist/*
var dist embed.FS

// GetAssets returns the file system of the dashboard pages.
func GetAssets() http.FileSystem {
	if devMode() {
		dir := sourceDir()
		fmt.Fprintf(os.Stderr, "monitoring: serving pages from %s\n", dir)

		return http.Dir(dir)
	}

	pages, err := fs.Sub(dist, "dist")
	if err != nil {
		panic(err)
	}

	return http.FS(pages)
}

func sourceDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("cannot locate the monitoring pages")
	}

	return filepath.Join(filepath.Dir(file), "dist")
}

func devMode() bool {
	on, err := strconv.ParseBool(os.Getenv(DevModeEnv))
	return err == nil && on
}
