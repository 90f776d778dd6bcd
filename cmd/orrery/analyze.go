package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oxygene76/orrery/internal/types"
	"github.com/oxygene76/orrery/pkg/analysis"
	"github.com/oxygene76/orrery/pkg/assets"
	"github.com/oxygene76/orrery/pkg/astronomy/orbital"
	"github.com/oxygene76/orrery/pkg/simulation"
	"github.com/oxygene76/orrery/pkg/snapshot"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report orbital statistics",
	Long: `Summarise the orbits of the initial system, of a CSV element table
(name,semi_major_axis,eccentricity,inclination_deg,speed[,radius]) or of a
recorded snapshot file.

Examples:
  orrery stats
  orrery stats --csv elements.csv --speed 60
  orrery stats --replay run.jsonl --json`,
	RunE: runStats,
}

var orbitCmd = &cobra.Command{
	Use:   "orbit",
	Short: "Sample one display orbit",
	Long:  `Print the perihelion, aphelion and the sampled orbit line for the given elements`,
	RunE:  runOrbit,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "List the initial planets and the asset catalog",
	RunE:  runSeed,
}

func init() {
	statsCmd.Flags().String("csv", "", "CSV file of orbital elements")
	statsCmd.Flags().String("replay", "", "Snapshot file recorded by simulate")
	statsCmd.Flags().Float64("speed", 0, "Global speed for periods (default simulation.speed)")
	statsCmd.Flags().Bool("json", false, "Print the report as JSON")
	statsCmd.Flags().String("output", "", "Also write the JSON report to this file")

	orbitCmd.Flags().Float64("a", 8, "Semi-major axis")
	orbitCmd.Flags().Float64("e", 0, "Eccentricity [0, 1)")
	orbitCmd.Flags().Float64("i", 0, "Inclination in degrees")
	orbitCmd.Flags().Int("segments", 12, "Chords of the printed orbit line")
}

func runStats(cmd *cobra.Command, args []string) error {
	csvFile, _ := cmd.Flags().GetString("csv")
	replay, _ := cmd.Flags().GetString("replay")
	speed, _ := cmd.Flags().GetFloat64("speed")
	asJSON, _ := cmd.Flags().GetBool("json")
	output, _ := cmd.Flags().GetString("output")

	if speed <= 0 {
		speed = config.Simulation.Speed
	}
	manager := analysis.NewManager(speed, config.Verbose())

	var report any
	switch {
	case replay != "":
		frames, err := snapshot.ReadFile(replay)
		if err != nil {
			return err
		}
		track := manager.AnalyzeTrack(frames)
		report = track
		if !asJSON {
			printTrack(track)
		}

	default:
		var bodies []types.BodyElements
		if csvFile != "" {
			var err error
			if bodies, err = analysis.LoadElementsCSV(csvFile); err != nil {
				return err
			}
		} else {
			state := simulation.NewState(simulation.Options{
				Speed:    speed,
				RandSeed: config.Simulation.RandSeed,
			})
			bodies = analysis.FromState(state)
		}

		orbits, err := manager.AnalyzeOrbits(bodies)
		if err != nil {
			return err
		}
		report = orbits
		if !asJSON {
			printOrbits(orbits)
		}
	}

	if asJSON || output != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		if asJSON {
			fmt.Println(string(data))
		}
		if output != "" {
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Report saved to: %s\n", output)
		}
	}
	return nil
}

func printOrbits(r *types.OrbitReport) {
	fmt.Printf("Orbit report at global speed %.1f\n", r.GlobalSpeed)
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("%-20s %10s %10s %12s %10s\n", "Body", "Perihelion", "Aphelion", "Period (s)", "Ratio")
	for _, b := range r.Bodies {
		period := "-"
		if b.PeriodSec > 0 {
			period = fmt.Sprintf("%.1f", b.PeriodSec)
		}
		ratio := ""
		if b.Ratio > 0 {
			ratio = fmt.Sprintf("%.3f", b.Ratio)
		}
		fmt.Printf("%-20s %10.3f %10.3f %12s %10s\n", b.Name, b.Perihelion, b.Aphelion, period, ratio)
	}
	fmt.Println(strings.Repeat("-", 72))
	printDistribution("Semi-major axis", r.SemiMajorAxis)
	printDistribution("Eccentricity", r.Eccentricity)
	printDistribution("Inclination (deg)", r.Inclination)
	printDistribution("Period (s)", r.Period)
	printDistribution("Spacing ratio", r.SpacingRatio)

	if len(r.Crossings) > 0 {
		fmt.Println("\nCrossing orbits:")
		for _, c := range r.Crossings {
			fmt.Printf("  %s reaches %.3f past the perihelion of %s\n", c.Inner, c.Depth, c.Outer)
		}
	}
}

func printTrack(r *types.TrackReport) {
	fmt.Printf("Replay: %d frames over %.1fs\n", r.Frames, r.Duration)
	fmt.Println(strings.Repeat("=", 72))
	for _, tr := range r.Tracks {
		fmt.Printf("%s (%s), %d samples\n", tr.Name, tr.ID, tr.Samples)
		printDistribution("  distance", tr.Distance)
		printDistribution("  height", tr.Height)
	}
}

func printDistribution(label string, d types.Distribution) {
	fmt.Printf("%-20s mean %9.3f  sd %8.3f  min %9.3f  max %9.3f\n", label, d.Mean, d.StdDev, d.Min, d.Max)
}

func runOrbit(cmd *cobra.Command, args []string) error {
	a, _ := cmd.Flags().GetFloat64("a")
	e, _ := cmd.Flags().GetFloat64("e")
	inc, _ := cmd.Flags().GetFloat64("i")
	segments, _ := cmd.Flags().GetInt("segments")

	if a <= 0 {
		return fmt.Errorf("semi-major axis must be positive")
	}
	if e < 0 || e >= 1 {
		return fmt.Errorf("eccentricity must be in [0, 1)")
	}

	oe := orbital.Elements{SemiMajorAxis: a, Eccentricity: e, Inclination: inc * math.Pi / 180}
	fmt.Printf("a=%.3f e=%.3f i=%.2f°  b=%.3f\n", a, e, inc, oe.SemiMinorAxis())
	fmt.Printf("Perihelion: %.3f  Aphelion: %.3f\n\n", oe.GetPerihelion(), oe.GetAphelion())

	fmt.Printf("%6s %10s %10s %10s\n", "theta", "x", "y", "z")
	for i, p := range oe.Sample(segments) {
		theta := 360 * float64(i) / float64(segments)
		fmt.Printf("%6.1f %10.4f %10.4f %10.4f\n", theta, p.X, p.Y, p.Z)
	}
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	fmt.Println("Initial planets:")
	fmt.Printf("  %-10s %6s %6s %7s %8s %6s  %s\n", "Name", "a", "e", "i (°)", "speed", "radius", "texture")
	for _, sp := range simulation.SeedPlanets {
		fmt.Printf("  %-10s %6.1f %6.3f %7.2f %8.2f %6.2f  %s\n",
			sp.Name, sp.SemiMajorAxis, sp.Eccentricity, sp.InclinationDeg, sp.Speed, sp.Radius, sp.Texture)
	}

	fmt.Println("\nModels:")
	for _, name := range assets.ModelKindNames() {
		mk := assets.ModelKinds[name]
		fmt.Printf("  %-10s %-14s scale %.1f, fallback %s\n", mk.Name, mk.File, mk.Scale, mk.Shape)
	}

	fmt.Printf("\nPlanet textures: %s\n", strings.Join(assets.PlanetTextures, ", "))
	fmt.Printf("Texture directory: %s\nModel directory:   %s\n", config.Assets.TextureDir, config.Assets.ModelDir)
	return nil
}
