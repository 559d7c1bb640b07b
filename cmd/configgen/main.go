package main

import (
	"flag"
	"log"

	"github.com/NStrijbosch/pybricksdev/internal/config"
)

func main() {
	output := flag.String("output", "pybricksdev.toml", "output path for the profile template")
	validate := flag.Bool("validate", false, "validate an existing profile file")
	input := flag.String("input", "pybricksdev.toml", "profile path for validation")
	force := flag.Bool("force", false, "overwrite an existing profile file")
	flag.Parse()

	if *validate {
		if _, err := config.Load(*input); err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated profile at %s", *input)
		return
	}

	if err := config.WriteTemplate(*output, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote profile template to %s", *output)
}
