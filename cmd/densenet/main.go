// Package main provides the densenet CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/born-ml/densenet/internal/config"
	"github.com/born-ml/densenet/internal/dataset"
	"github.com/born-ml/densenet/internal/metrics"
	"github.com/born-ml/densenet/internal/nn"
	"github.com/born-ml/densenet/internal/serialization"
)

const version = "v0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one subcommand and returns the process exit code. Deferred
// cleanup runs before main exits.
func run(args []string) int {
	if len(args) < 1 {
		usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "version":
		fmt.Printf("densenet %s\n", version)
	case "xor":
		err = runXOR(ctx, rest)
	case "train":
		err = runTrain(ctx, rest)
	case "evaluate":
		err = runEvaluate(rest)
	case "predict":
		err = runPredict(rest)
	case "help", "-h", "--help":
		usage()
	default:
		usage()
		log.Printf("unknown command %q", cmd)
		return 2
	}
	if err != nil {
		log.Printf("%s: %v", args[0], err)
		return 1
	}
	return 0
}

func usage() {
	fmt.Println("densenet - dense sigmoid networks trained by online gradient descent")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  xor        Train a small network on XOR")
	fmt.Println("  train      Train from a YAML config")
	fmt.Println("  evaluate   Score a saved model on a labelled dataset")
	fmt.Println("  predict    Run a saved model on one input vector")
}

func runXOR(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("xor", flag.ExitOnError)
	hidden := fs.Int("hidden", 3, "Hidden layer size")
	epochs := fs.Int("epochs", 10000, "Passes over the four examples")
	lr := fs.Float64("lr", 0.5, "Learning rate")
	seed := fs.Uint64("seed", 1, "PRNG seed")
	out := fs.String("out", "", "Save the trained model to this path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	net, err := nn.New(nn.Config{
		Structure:    []int{2, *hidden, 1},
		LearningRate: *lr,
		Rand:         newRand(*seed),
	})
	if err != nil {
		return err
	}

	data := []nn.TrainingExample{
		{Input: []float64{0, 0}, Output: []float64{0}},
		{Input: []float64{0, 1}, Output: []float64{1}},
		{Input: []float64{1, 0}, Output: []float64{1}},
		{Input: []float64{1, 1}, Output: []float64{0}},
	}
	if err := net.TrainEpochs(ctx, data, *epochs); err != nil {
		return err
	}

	loss, err := net.Loss(data)
	if err != nil {
		return err
	}
	log.Printf("%s epochs=%d mse=%.6f", net, *epochs, loss)
	for _, ex := range data {
		y, err := net.Predict(ex.Input)
		if err != nil {
			return err
		}
		fmt.Printf("%v -> %.4f (want %v)\n", ex.Input, y[0], ex.Output[0])
	}
	return save(net, *out, map[string]string{"task": "xor", "epochs": strconv.Itoa(*epochs)})
}

func runTrain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	cfgPath := fs.String("config", "configs/mnist.yaml", "Path to YAML config")
	lr := fs.Float64("lr", 0, "Override learning rate")
	seed := fs.Uint64("seed", 0, "Override PRNG seed")
	epochs := fs.Int("epochs", 0, "Override number of epochs")
	progressEvery := fs.Int("progress-every", 0, "Log every N examples")
	maxSamples := fs.Int("max-samples", 0, "Limit training and test samples")
	out := fs.String("out", "", "Override model output path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyOverrides(config.Overrides{
		LearningRate:  *lr,
		Seed:          *seed,
		Epochs:        *epochs,
		ProgressEvery: *progressEvery,
		MaxSamples:    *maxSamples,
		ModelPath:     *out,
	})
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	trainSet, err := dataset.Load(cfg.TrainImages, cfg.TrainLabels, cfg.MaxSamples)
	if err != nil {
		return fmt.Errorf("load training data: %w", err)
	}
	log.Printf("train samples=%d features=%d", trainSet.Len(), trainSet.Features())

	netCfg := cfg.NetworkConfig()
	if cfg.Seed != 0 {
		netCfg.Rand = newRand(cfg.Seed)
	}
	net, err := nn.New(netCfg)
	if err != nil {
		return err
	}
	trainData, err := trainSet.TrainingExamples(net.OutputSize())
	if err != nil {
		return err
	}

	var testData []nn.EvaluationExample
	if cfg.TestImages != "" {
		testSet, err := dataset.Load(cfg.TestImages, cfg.TestLabels, cfg.MaxSamples)
		if err != nil {
			return fmt.Errorf("load test data: %w", err)
		}
		testData = testSet.EvaluationExamples()
		log.Printf("test samples=%d", testSet.Len())
	}

	log.Printf("%s epochs=%d", net, cfg.Epochs)
	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		net.SetObserver(progressLogger(net, epoch, lossSample(trainData), metrics.NewMeter(), log.Printf))
		if err := net.Train(ctx, trainData); err != nil {
			return fmt.Errorf("epoch %d: %w", epoch, err)
		}
		if len(testData) > 0 {
			result, err := net.Evaluate(testData)
			if err != nil {
				return err
			}
			log.Printf("epoch=%d accuracy=%s", epoch, result)
		}
	}

	return save(net, cfg.ModelPath, map[string]string{
		"train_images": cfg.TrainImages,
		"epochs":       strconv.Itoa(cfg.Epochs),
	})
}

// lossSampleSize caps the examples scored for the loss in progress lines.
const lossSampleSize = 100

func lossSample(data []nn.TrainingExample) []nn.TrainingExample {
	return data[:min(len(data), lossSampleSize)]
}

// progressLogger reports throughput and the current loss over sample. It
// runs synchronously inside Train, so the network is idle while it scores.
func progressLogger(net *nn.Network, epoch int, sample []nn.TrainingExample, meter *metrics.Meter,
	logf func(format string, args ...any),
) nn.ProgressFunc {
	return func(p nn.Progress) {
		if p.Iteration == 0 {
			return
		}
		loss, err := net.Loss(sample)
		if err != nil {
			logf("epoch=%d progress=%d/%d loss error: %v", epoch, p.Iteration, p.Total, err)
			return
		}
		snap := meter.Mark(p.Iteration, loss)
		logf("epoch=%d progress=%d/%d examples/sec=%.0f loss=%.6f",
			epoch, p.Iteration, p.Total, snap.ExamplesPerSec, snap.LastLoss)
	}
}

func runEvaluate(args []string) error {
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	modelPath := fs.String("model", "", "Saved model path")
	images := fs.String("images", "", "IDX image file or CSV dataset")
	labels := fs.String("labels", "", "IDX label file")
	maxSamples := fs.Int("max-samples", 0, "Limit samples")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *modelPath == "" || *images == "" {
		return errors.New("-model and -images are required")
	}

	net, header, err := serialization.LoadFile(*modelPath)
	if err != nil {
		return err
	}
	log.Printf("loaded model id=%s created=%s %s", header.ModelID, header.CreatedAt.Format("2006-01-02T15:04:05Z"), net)

	set, err := dataset.Load(*images, *labels, *maxSamples)
	if err != nil {
		return err
	}
	result, err := net.Evaluate(set.EvaluationExamples())
	if err != nil {
		return err
	}
	fmt.Println(result)
	return nil
}

func runPredict(args []string) error {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	modelPath := fs.String("model", "", "Saved model path")
	input := fs.String("input", "", "Comma separated input vector")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *modelPath == "" || *input == "" {
		return errors.New("-model and -input are required")
	}

	vec, err := parseVector(*input)
	if err != nil {
		return err
	}
	net, _, err := serialization.LoadFile(*modelPath)
	if err != nil {
		return err
	}
	out, err := net.Predict(vec)
	if err != nil {
		return err
	}
	fmt.Printf("output=%v class=%d\n", out, nn.Argmax(out))
	return nil
}

func parseVector(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	vec := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("input[%d]: %w", i, err)
		}
		vec[i] = v
	}
	return vec, nil
}

func save(net *nn.Network, path string, metadata map[string]string) error {
	if path == "" {
		return nil
	}
	id, err := serialization.SaveFile(path, net, metadata)
	if err != nil {
		return err
	}
	log.Printf("saved model id=%s path=%s", id, path)
	return nil
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
