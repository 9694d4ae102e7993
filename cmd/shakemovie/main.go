package main

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/lukaszgryglicki/shakemovie/internal/shakemovie"
)

func main() {
	shakemovie.Debug = os.Getenv("DEBUG") != ""
	shakemovie.UseLocks = os.Getenv("SKIP_LOCKS") == ""
	shakemovie.PNG = os.Getenv("PNG") != ""
	shakemovie.RAW = os.Getenv("RAW") != ""
	shakemovie.EXR = os.Getenv("EXR") != ""
	shakemovie.GIF = os.Getenv("GIF") != ""
	profile := os.Getenv("PROFILE") != ""
	if profile {
		f, err := os.Create("cpu.out")
		if err != nil {
			panic(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			panic(err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	cfg := "config.json"
	if len(os.Args) > 1 {
		cfg = os.Args[1]
	}
	if err := shakemovie.Run(cfg); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
