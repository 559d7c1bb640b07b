package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"github.com/NStrijbosch/pybricksdev/internal/compile"
	"github.com/NStrijbosch/pybricksdev/internal/device"
	"github.com/NStrijbosch/pybricksdev/internal/discovery"
	"github.com/NStrijbosch/pybricksdev/internal/flash"
	"github.com/NStrijbosch/pybricksdev/internal/kernel"
	"github.com/NStrijbosch/pybricksdev/internal/logging"
	"github.com/NStrijbosch/pybricksdev/internal/session"
)

func main() {
	log := logging.ConfigureRuntime()

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "compile":
		err = cmdCompile(ctx, log, os.Args[2:])
	case "run":
		err = cmdRun(ctx, log, os.Args[2:])
	case "deploy":
		err = cmdDeploy(ctx, log, os.Args[2:])
	case "flash":
		err = cmdFlash(ctx, log, os.Args[2:])
	case "kernel":
		err = cmdKernel(ctx, log, os.Args[2:])
	case "help", "-h", "--help":
		usage(os.Stdout)
		return
	default:
		fatalf("unknown command %q (supported: compile, run, deploy, flash, kernel)", os.Args[1])
	}
	if err != nil {
		fatalf("%v", err)
	}
}

func usage(w *os.File) {
	fmt.Fprintln(w, `Utilities for Pybricks developers.

Usage:
  pybricksdev compile [-config <path>] <script>
  pybricksdev run     [-config <path>] <device> <script>
  pybricksdev deploy  [-config <path>] <device> <script>
  pybricksdev flash   [-delay <duration>] <device> <firmware>
  pybricksdev kernel  install|remove|check

<device> is a hostname or IP address (ev3dev brick), a hardware
address, or a device name. <script> is a path to a MicroPython script
or an inline one-liner.`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "pybricksdev: "+format+"\n", args...)
	os.Exit(1)
}

// resolveScript accepts a script path or an inline one-liner, saving
// the latter to a temporary file.
func resolveScript(arg string) (string, error) {
	if _, err := os.Stat(arg); err == nil {
		return arg, nil
	}
	return compile.SaveScript(arg)
}

func cmdCompile(ctx context.Context, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	configPath := fs.String("config", "", "profile file path")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("compile needs exactly one script argument")
	}

	cfg, err := loadProfile(*configPath)
	if err != nil {
		return err
	}

	script, err := resolveScript(fs.Arg(0))
	if err != nil {
		return err
	}

	compiler := compile.Compiler{Tool: cfg.Tools.MpyCross, BuildDir: cfg.Tools.BuildDir, Log: log}
	version, err := compiler.Version(ctx)
	if err != nil {
		return err
	}
	fmt.Println(version)

	blob, err := compiler.CompileFile(ctx, script)
	if err != nil {
		return err
	}
	printMpy(blob)
	return nil
}

// printMpy dumps the bytecode blob as hex rows.
func printMpy(blob []byte) {
	fmt.Printf("%d bytes\n", len(blob))
	for i := 0; i < len(blob); i += 16 {
		end := i + 16
		if end > len(blob) {
			end = len(blob)
		}
		fmt.Printf("% x\n", blob[i:end])
	}
}

func cmdRun(ctx context.Context, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "profile file path")
	search := fs.Duration("search", 10*time.Second, "how long to search for a named device")
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("run needs device and script arguments")
	}
	address, scriptArg := fs.Arg(0), fs.Arg(1)

	cfg, err := loadProfile(*configPath)
	if err != nil {
		return err
	}
	script, err := resolveScript(scriptArg)
	if err != nil {
		return err
	}

	kind := device.Classify(address)
	if kind == device.KindName {
		resolved, err := resolveDeviceName(ctx, address, *search, log)
		switch {
		case err == nil:
			address = string(resolved)
			kind = device.Classify(address)
		case errors.Is(err, discovery.ErrDeviceNotFound):
			// Not on the network; fall through to the name backend.
		default:
			return err
		}
	}

	registry := newBackendRegistry(cfg, log)
	conn, err := registry.Resolve(kind)
	if err != nil {
		return err
	}

	if err := conn.Connect(ctx, transportAddress(address)); err != nil {
		return err
	}
	defer conn.Disconnect()
	return conn.Run(ctx, script)
}

func cmdDeploy(ctx context.Context, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("deploy", flag.ExitOnError)
	configPath := fs.String("config", "", "profile file path")
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("deploy needs device and script arguments")
	}
	address, scriptArg := fs.Arg(0), fs.Arg(1)

	cfg, err := loadProfile(*configPath)
	if err != nil {
		return err
	}
	script, err := resolveScript(scriptArg)
	if err != nil {
		return err
	}
	if device.Classify(address) != device.KindEV3 {
		return fmt.Errorf("deploy supports networked ev3dev bricks only")
	}

	sess := session.NewSession(newCache(cfg, log), newRunner(cfg, log), cfg.Device.Home, log)
	if err := sess.Connect(ctx, transportAddress(address)); err != nil {
		return err
	}
	defer sess.Disconnect()

	remotePath, err := sess.Deploy(ctx, script)
	if err != nil {
		return err
	}
	fmt.Println(remotePath)
	return nil
}

func cmdFlash(ctx context.Context, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("flash", flag.ExitOnError)
	delay := fs.Duration("delay", 10*time.Millisecond, "pause between firmware packets")
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("flash needs device and firmware arguments")
	}
	address, firmwarePath := fs.Arg(0), fs.Arg(1)

	firmware, meta, err := flash.ReadFirmware(firmwarePath)
	if err != nil {
		return err
	}
	log.Info().
		Int("size", meta.MaxSize).
		Uint32("checksum", meta.Checksum).
		Msg("firmware image loaded")

	bl := newBootloader()
	if err := bl.Connect(ctx, transportAddress(address)); err != nil {
		return err
	}
	defer bl.Disconnect()
	return bl.Flash(ctx, firmware, meta, *delay)
}

func cmdKernel(ctx context.Context, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("kernel", flag.ExitOnError)
	configPath := fs.String("config", "", "profile file path")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("kernel needs a subcommand: install, remove, or check")
	}

	cfg, err := loadProfile(*configPath)
	if err != nil {
		return err
	}
	mgr := kernel.Manager{Python: cfg.Tools.Python, Log: log}

	switch fs.Arg(0) {
	case "install":
		return mgr.Install(ctx)
	case "remove":
		return mgr.Remove(ctx)
	case "check":
		spec, err := mgr.Check(ctx)
		if err != nil {
			return err
		}
		fmt.Println(spec)
		return nil
	default:
		return fmt.Errorf("unknown kernel subcommand %q", fs.Arg(0))
	}
}
