// Command b2probe runs canned scenes through the broad phase, the narrow
// phase and time of impact, and logs what it finds.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ByteArena/box2d-collision/broadphase"
	"github.com/ByteArena/box2d-collision/internal/config"
	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

const (
	defaultScene  = "boxes"
	defaultBodies = 64
	defaultSeed   = 1
)

// options configures one scene run.
type options struct {
	Bodies int
	Seed   uint64
	Tree   broadphase.Config
}

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "b2probe",
	})
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		logger.SetFormatter(log.LogfmtFormatter)
	}

	if err := run(logger, os.Args[1:]); err != nil {
		logger.Fatal("probe failed", "err", err)
	}
}

func run(logger *log.Logger, args []string) error {
	bodies, err := config.GetEnvInt("B2PROBE_BODIES", defaultBodies)
	if err != nil {
		return err
	}
	seed, err := config.GetEnvInt("B2PROBE_SEED", defaultSeed)
	if err != nil {
		return err
	}
	tree := broadphase.DefaultConfig()
	if tree.AABBExtension, err = config.GetEnvFloat("B2PROBE_AABB_EXTENSION", tree.AABBExtension); err != nil {
		return err
	}
	if tree.AABBMultiplier, err = config.GetEnvFloat("B2PROBE_AABB_MULTIPLIER", tree.AABBMultiplier); err != nil {
		return err
	}

	fs := flag.NewFlagSet("b2probe", flag.ContinueOnError)
	scene := fs.String("scene", config.GetEnv("B2PROBE_SCENE", defaultScene), "scene to run: "+strings.Join(sceneNames(), ", "))
	level := fs.String("log-level", config.GetEnv("B2PROBE_LOG_LEVEL", "info"), "debug, info, warn or error")
	fs.IntVar(&bodies, "bodies", bodies, "number of bodies in the scene")
	fs.IntVar(&seed, "seed", seed, "random seed")
	fs.Float64Var(&tree.AABBExtension, "aabb-extension", tree.AABBExtension, "fat AABB margin")
	fs.Float64Var(&tree.AABBMultiplier, "aabb-multiplier", tree.AABBMultiplier, "fat AABB displacement multiplier")
	if err := fs.Parse(args); err != nil {
		return err
	}

	lvl, err := log.ParseLevel(*level)
	if err != nil {
		return fmt.Errorf("log level %q: %w", *level, err)
	}
	logger.SetLevel(lvl)

	if bodies < 1 {
		return fmt.Errorf("bodies must be positive, got %d", bodies)
	}
	if tree.AABBExtension < 0 || tree.AABBMultiplier < 0 {
		return fmt.Errorf("negative AABB margins: %+v", tree)
	}

	fn, ok := scenes[*scene]
	if !ok {
		return fmt.Errorf("unknown scene %q (have %s)", *scene, strings.Join(sceneNames(), ", "))
	}

	opts := options{Bodies: bodies, Seed: uint64(seed), Tree: tree}
	l := logger.With("scene", *scene)
	l.Info("starting", "bodies", opts.Bodies, "seed", opts.Seed, "extension", tree.AABBExtension, "multiplier", tree.AABBMultiplier)

	start := time.Now()
	if err := fn(l, opts); err != nil {
		return fmt.Errorf("scene %s: %w", *scene, err)
	}
	l.Info("done", "elapsed", time.Since(start))
	return nil
}
