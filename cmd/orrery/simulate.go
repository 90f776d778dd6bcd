package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/oxygene76/orrery/internal/types"
	"github.com/oxygene76/orrery/pkg/assets"
	"github.com/oxygene76/orrery/pkg/controller"
	"github.com/oxygene76/orrery/pkg/simulation"
	"github.com/oxygene76/orrery/pkg/snapshot"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the system headless and record frames",
	Long: `Step the system with a fixed time step instead of the wall clock and
write the frames as JSON lines.

A command script is a JSON lines file of websocket messages, for example
  {"type":"add_comet"}
  {"type":"add_moon","payload":{"planet":"planet-2","name":"Luna"}}
Commands are applied in order before the first frame. A line may carry
"at" to apply it before a later frame instead:
  {"at":300,"type":"speed","payload":{"speed":90}}

Examples:
  orrery simulate --frames 600 --output run.jsonl
  orrery simulate --frames 3600 --every 10 --script setup.jsonl --seed 7`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().Int("frames", 600, "Number of frames to step")
	simulateCmd.Flags().Duration("dt", time.Second/60, "Simulated time per frame")
	simulateCmd.Flags().Int("every", 1, "Record every n-th frame")
	simulateCmd.Flags().String("output", "", "Snapshot file (default <snapshot_dir>/orrery-<time>.jsonl, - for stdout)")
	simulateCmd.Flags().String("script", "", "JSON lines command script")
	simulateCmd.Flags().Int64("seed", 0, "Random seed (overrides simulation.rand_seed)")
	simulateCmd.Flags().Bool("assets", false, "Resolve textures and models from the asset directories")
}

// scriptLine is one scheduled command
type scriptLine struct {
	At int `json:"at"`
	types.Message
}

func runSimulate(cmd *cobra.Command, args []string) error {
	frames, _ := cmd.Flags().GetInt("frames")
	dt, _ := cmd.Flags().GetDuration("dt")
	every, _ := cmd.Flags().GetInt("every")
	output, _ := cmd.Flags().GetString("output")
	script, _ := cmd.Flags().GetString("script")
	seed, _ := cmd.Flags().GetInt64("seed")
	withAssets, _ := cmd.Flags().GetBool("assets")

	if frames < 1 {
		return fmt.Errorf("--frames must be positive")
	}
	if dt <= 0 {
		return fmt.Errorf("--dt must be positive")
	}
	if seed != 0 {
		config.Simulation.RandSeed = seed
	}

	var lines []scriptLine
	if script != "" {
		var err error
		if lines, err = loadScript(script); err != nil {
			return err
		}
	}

	clock := simulation.NewManualTime(time.Now())
	opts := controller.Options{Config: config, Time: clock}
	if withAssets {
		opts.Loader = assets.NewDirLoader(config.Assets.TextureDir, config.Assets.ModelDir)
	}
	ctrl := controller.New(opts)
	defer ctrl.Close()

	sink, path, err := openSink(output)
	if err != nil {
		return err
	}
	rec := snapshot.NewRecorder(sink, every)
	if err := rec.Start(frames); err != nil {
		return err
	}

	start := time.Now()
	rejected := 0
	for i := 0; i < frames; i++ {
		for _, line := range lines {
			if line.At != i {
				continue
			}
			if _, err := ctrl.Apply(line.Message); err != nil {
				rejected++
				fmt.Fprintf(os.Stderr, "frame %d: %s rejected: %v\n", i, line.Type, err)
			}
		}
		ctrl.Settle()

		f := ctrl.Step()
		if err := rec.Record(f); err != nil {
			rec.Finish(0)
			return fmt.Errorf("failed to record frame %d: %w", i, err)
		}
		clock.Advance(dt)
	}

	elapsed := ctrl.State().Clock.ElapsedMillis()
	if err := rec.Finish(elapsed); err != nil {
		return fmt.Errorf("failed to finish snapshot: %w", err)
	}

	if path != "" {
		c := ctrl.State().Counters()
		fmt.Printf("Simulated %d frames (%.1fs simulated, %v wall) into %s\n",
			frames, elapsed/1000, time.Since(start).Round(time.Millisecond), path)
		fmt.Printf("Planets: %d  Moons: %d  Comets: %d  Models: %d  Rejected commands: %d\n",
			c.Planets, c.Moons, c.Comets, c.Models, rejected)
	}
	return nil
}

// openSink returns the JSONL writer for output and the path to report,
// empty for stdout
func openSink(output string) (snapshot.Sink, string, error) {
	if output == "-" {
		return snapshot.NewJSONLStream(os.Stdout), "", nil
	}
	if output == "" {
		name := fmt.Sprintf("orrery-%s.jsonl", time.Now().Format("20060102-150405"))
		output = filepath.Join(config.Client.SnapshotDir, name)
		if err := os.MkdirAll(config.Client.SnapshotDir, 0755); err != nil {
			return nil, "", fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}
	w, err := snapshot.NewJSONLWriter(output)
	if err != nil {
		return nil, "", err
	}
	return w, output, nil
}

func loadScript(path string) ([]scriptLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()

	var lines []scriptLine
	scanner := bufio.NewScanner(f)
	n := 0
	for scanner.Scan() {
		n++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var line scriptLine
		if err := json.Unmarshal([]byte(text), &line); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, n, err)
		}
		if line.Type == "" {
			return nil, fmt.Errorf("%s line %d: missing type", path, n)
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return lines, nil
}
