package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cayecrypto/polymarket-btc-bot/internal/dockerfile"
)

func main() {
	opts := dockerfile.DefaultOptions()

	flag.StringVar(&opts.Profile, "profile", opts.Profile, "Launcher profile baked into the image")
	flag.StringVar(&opts.GoImage, "go-image", opts.GoImage, "Builder image")
	flag.StringVar(&opts.PythonImage, "python-image", opts.PythonImage, "Base image of the app")
	flag.StringVar(&opts.LauncherDir, "launcher-dir", opts.LauncherDir, "Launcher module directory in the build context")
	flag.StringVar(&opts.Requirements, "requirements", opts.Requirements, "Python dependency manifest")
	flag.StringVar(&opts.WorkDir, "workdir", opts.WorkDir, "Working directory of the app")
	flag.StringVar(&opts.ExposePort, "expose", "", "Port to EXPOSE (profile default when empty)")
	flag.Parse()

	if err := dockerfile.Render(os.Stdout, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render Dockerfile: %v\n", err)
		os.Exit(1)
	}
}
