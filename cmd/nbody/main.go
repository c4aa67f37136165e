// Command nbody runs a gravitational N-body simulation from the
// command line: pick a dataset preset, an engine and a solver, and
// stream snapshots to a file.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli"

	"github.com/nbodyx/nbody"
	"github.com/nbodyx/nbody/body"
	"github.com/nbodyx/nbody/snapshot"
)

// VERSION is injected by buildflags
var VERSION = "SELFBUILD"

func main() {
	myApp := cli.NewApp()
	myApp.Name = "nbody"
	myApp.Usage = "gravitational N-body integrator"
	myApp.Version = VERSION
	myApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "engine, e",
			Value: "openmp",
			Usage: "force engine: simple, openmp, block, simple_bh, ah",
		},
		cli.StringFlag{
			Name:  "solver, s",
			Value: "rk4",
			Usage: "solver: euler, rk4, rkck, rkdp, rkf, rkgl, rklc, adams, trapeze, stormer",
		},
		cli.StringFlag{
			Name:  "preset, p",
			Value: "box",
			Usage: "dataset: box, kepler, figure8, cold_sphere, plummer",
		},
		cli.IntFlag{
			Name:  "count, n",
			Value: 1024,
			Usage: "body count for the random presets",
		},
		cli.Int64Flag{
			Name:  "seed",
			Value: 1,
			Usage: "seed for the random presets",
		},
		cli.Float64Flag{
			Name:  "max-time, T",
			Value: 1,
			Usage: "simulated time to reach",
		},
		cli.Float64Flag{
			Name:  "dump-dt",
			Value: 1e-2,
			Usage: "simulated time between snapshots",
		},
		cli.Float64Flag{
			Name:  "check-dt",
			Value: 1e-1,
			Usage: "simulated time between conservation checks",
		},
		cli.Float64Flag{
			Name:  "theta",
			Value: 1,
			Usage: "Barnes-Hut distance to node radius ratio",
		},
		cli.StringFlag{
			Name:  "traverse-type",
			Value: "cycle",
			Usage: "Barnes-Hut traversal: cycle, nested_tree",
		},
		cli.StringFlag{
			Name:  "tree-layout",
			Value: "tree",
			Usage: "Barnes-Hut index layout: tree, heap, heap_stackless",
		},
		cli.StringFlag{
			Name:  "output, o",
			Usage: "snapshot stream file; empty disables recording",
		},
		cli.StringFlag{
			Name:  "params",
			Usage: "yaml file with extra solver/engine parameters",
		},
	}
	myApp.Action = run
	if err := myApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	params := nbody.Params{}
	if path := c.String("params"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		loaded, err := nbody.LoadParams(f)
		f.Close()
		if err != nil {
			return err
		}
		params = loaded
	}
	params["engine"] = c.String("engine")
	params["solver"] = c.String("solver")
	params["distance_to_node_radius_ratio"] = c.Float64("theta")
	params["traverse_type"] = c.String("traverse-type")
	params["tree_layout"] = c.String("tree-layout")

	data, err := makePreset(c)
	if err != nil {
		return err
	}
	eng, err := nbody.NewEngine(params)
	if err != nil {
		return err
	}
	slv, err := nbody.NewSolver(params)
	if err != nil {
		return err
	}
	if err := eng.Init(data); err != nil {
		return err
	}
	slv.SetEngine(eng)

	runner := nbody.NewRunner(slv, data)
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		runner.Sink = snapshot.NewWriter(f)
	}

	stats, err := runner.Run(c.Float64("max-time"), c.Float64("dump-dt"), c.Float64("check-dt"))
	if err != nil {
		return err
	}
	fmt.Printf("steps %d, frames %d, non-converged %d, dE/E %.3g\n",
		stats.Steps, stats.Frames, stats.NonConverged, stats.EnergyDrift)
	return nil
}

func makePreset(c *cli.Context) (*body.Universe, error) {
	n, seed := c.Int("count"), c.Int64("seed")
	switch c.String("preset") {
	case "box":
		return body.NewRandomBox(n, 100, 100, 100, seed), nil
	case "kepler":
		return body.NewKeplerPair(), nil
	case "figure8":
		return body.NewFigureEight(), nil
	case "cold_sphere":
		return body.NewColdSphere(n, seed), nil
	case "plummer":
		return body.NewPlummerSphere(n, 1, seed), nil
	}
	return nil, fmt.Errorf("unknown preset %q", c.String("preset"))
}
