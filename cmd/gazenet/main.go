// Package main provides the gazenet CLI.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/gaze-ml/gazenet/backend/cpu"
	"github.com/gaze-ml/gazenet/gaze"
	"github.com/gaze-ml/gazenet/internal/serialization"
	"github.com/gaze-ml/gazenet/tensor"
)

const usage = `gazenet - gaze estimation network

Commands:
  version    Show version
  info       Show backend and CPU features
  run        Build (or load) a model and run it on random inputs
  inspect    Print a checkpoint's header and tensors

Run 'gazenet <command> -h' for command flags.
`

func main() {
	log.SetFlags(0)
	log.SetPrefix("gazenet: ")

	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(2)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "version":
		fmt.Printf("gazenet %s (format v%d)\n", serialization.Version, serialization.FormatVersion)
	case "info":
		info()
	case "run":
		run(args)
	case "inspect":
		inspect(args)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Print(usage)
		log.Fatalf("unknown command %q", os.Args[1])
	}
}

func info() {
	backend := cpu.New()
	par := backend.Parallel()
	fmt.Printf("backend:  %s\n", backend.Name())
	fmt.Printf("device:   %s\n", backend.Device())
	fmt.Printf("features: %s\n", backend.Features())
	fmt.Printf("workers:  %d (parallel=%v)\n", par.NumWorkers, par.Enabled)
}

func run(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML model config (defaults when empty)")
	depth := fs.Int("depth", 0, "Override network depth (6n+2)")
	gate := fs.String("gate", "", "Override gate: covariance, spatial or none")
	seed := fs.Int64("seed", 0, "Override weight seed")
	training := fs.Bool("training", false, "Normalize with batch statistics")
	batch := fs.Int("batch", 4, "Batch size of the random input")
	inputSeed := fs.Int64("input-seed", 1, "Seed of the random input")
	predict := fs.Bool("predict", false, "Also run the regression head")
	save := fs.String("save", "", "Write the model to this .gaze file")
	load := fs.String("load", "", "Load the model from this .gaze file instead of building it")
	mmap := fs.Bool("mmap", false, "Memory-map the checkpoint given by -load")
	_ = fs.Parse(args)

	if *batch <= 0 {
		log.Fatalf("invalid batch size %d", *batch)
	}

	backend := cpu.New()
	model, err := buildModel(backend, *cfgPath, *load, *mmap, gaze.Overrides{
		Depth:    *depth,
		Gate:     *gate,
		Seed:     *seed,
		Training: *training,
	})
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("model: %s", model)

	cfg := model.Config()
	rng := rand.New(rand.NewSource(*inputSeed)) //nolint:gosec // G404: reproducible inputs
	image := tensor.Randn[float32](append(tensor.Shape{*batch}, cfg.InputShape...), rng, backend)
	pose := tensor.Uniform[float32](tensor.Shape{*batch, cfg.PoseDim}, -math.Pi/4, math.Pi/4, rng, backend)

	out, err := model.Forward(image, pose)
	if err != nil {
		log.Fatalf("forward: %v", err)
	}
	fmt.Printf("features %v %s\n", out.Shape(), summarize(out.Data()))

	if *predict {
		angles, err := model.Predict(image, pose)
		if err != nil {
			log.Fatalf("predict: %v", err)
		}
		fmt.Printf("angles   %v %s\n", angles.Shape(), summarize(angles.Data()))
		if cfg.OutputDim == 2 {
			data := angles.Data()
			for i := range *batch {
				pitch, yaw := float64(data[2*i]), float64(data[2*i+1])
				v := gaze.Vector(pitch, yaw)
				fmt.Printf("  [%d] pitch=%+.4f yaw=%+.4f dir=(%+.3f, %+.3f, %+.3f)\n", i, pitch, yaw, v[0], v[1], v[2])
			}
		}
	}

	if *save != "" {
		if err := model.Save(*save, map[string]string{"source": "gazenet run"}); err != nil {
			log.Fatalf("save: %v", err)
		}
		log.Printf("saved %s", *save)
	}
}

func buildModel(backend *cpu.Backend, cfgPath, load string, mmap bool, o gaze.Overrides) (*gaze.Model[*cpu.Backend], error) {
	if load != "" {
		open := gaze.Load[*cpu.Backend]
		if mmap {
			open = gaze.LoadMmap[*cpu.Backend]
		}
		model, err := open(load, backend)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", load, err)
		}
		if o.Training {
			model.SetTraining(true)
		}
		return model, nil
	}

	cfg := gaze.DefaultConfig()
	if cfgPath != "" {
		var err error
		if cfg, err = gaze.LoadConfig(cfgPath); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	cfg.ApplyOverrides(o)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return gaze.New(cfg, backend)
}

func summarize(data []float32) string {
	if len(data) == 0 {
		return "(empty)"
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	var sum, sumSq float64
	for _, v := range data {
		x := float64(v)
		sum += x
		sumSq += x * x
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	n := float64(len(data))
	mean := sum / n
	std := math.Sqrt(math.Max(sumSq/n-mean*mean, 0))
	return fmt.Sprintf("mean=%.6f std=%.6f min=%.6f max=%.6f", mean, std, lo, hi)
}

// checkpointFile is the part of the .gaze readers inspect needs.
type checkpointFile interface {
	Header() serialization.Header
	Flags() uint32
	Checksum() [serialization.ChecksumSize]byte
	Close() error
}

func inspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	file := fs.String("file", "", "Path to a .gaze checkpoint")
	mmap := fs.Bool("mmap", false, "Memory-map the file")
	skipChecksum := fs.Bool("skip-checksum", false, "Do not verify the data checksum")
	_ = fs.Parse(args)

	if *file == "" {
		fs.Usage()
		os.Exit(2)
	}

	opts := serialization.ReaderOptions{SkipChecksumValidation: *skipChecksum}
	var (
		r   checkpointFile
		err error
	)
	if *mmap {
		r, err = serialization.NewMmapReaderWithOptions(*file, opts)
	} else {
		r, err = serialization.NewReaderWithOptions(*file, opts)
	}
	if err != nil {
		log.Fatalf("open %s: %v", *file, err)
	}
	defer r.Close()

	h := r.Header()
	sum := r.Checksum()
	fmt.Printf("format:     v%d (gazenet %s)\n", h.FormatVersion, h.GazenetVersion)
	fmt.Printf("model:      %s\n", h.ModelType)
	fmt.Printf("id:         %s\n", h.CheckpointID)
	fmt.Printf("created:    %s\n", h.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("flags:      %#x\n", r.Flags())
	fmt.Printf("checksum:   %x\n", sum[:])

	for key, value := range h.Metadata {
		if strings.Contains(value, "\n") {
			fmt.Printf("meta %s:\n  %s\n", key, strings.ReplaceAll(strings.TrimSpace(value), "\n", "\n  "))
			continue
		}
		fmt.Printf("meta %s: %s\n", key, value)
	}

	var elements int
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nNAME\tDTYPE\tSHAPE\tOFFSET\tBYTES")
	for _, t := range h.Tensors {
		elements += tensor.Shape(t.Shape).NumElements()
		fmt.Fprintf(tw, "%s\t%s\t%v\t%d\t%d\n", t.Name, t.DType, t.Shape, t.Offset, t.Size)
	}
	if err := tw.Flush(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\n%d tensors, %d elements\n", len(h.Tensors), elements)
}
