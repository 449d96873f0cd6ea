package cmd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/SimulationEverywhere/cadmium-v2-sub001/examples/blinky"
	"github.com/SimulationEverywhere/cadmium-v2-sub001/examples/gpt"
	"github.com/SimulationEverywhere/cadmium-v2-sub001/lib/iestream"
	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/modeling"
	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/realtime"
)

// ErrUnknownModel is returned when no factory builds the requested model.
var ErrUnknownModel = errors.New("unknown model type")

// An experiment is a top model ready to be simulated.
type experiment struct {
	top modeling.CoupledModel

	// button is notified when the user presses Enter, if the model accepts
	// asynchronous input.
	button *realtime.AsyncEvent

	close func() error
}

type experimentFactory func(cfg Config) (*experiment, error)

var experimentFactories = map[string]experimentFactory{
	"gpt":      buildGPT,
	"efp":      buildEFP,
	"blinky":   buildBlinky,
	"iestream": buildIEStream,
}

func modelNames() []string {
	names := make([]string, 0, len(experimentFactories))
	for name := range experimentFactories {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func buildExperiment(cfg Config) (*experiment, error) {
	factory, ok := experimentFactories[cfg.Model]
	if !ok {
		return nil, fmt.Errorf("%w: %q, available models are %v",
			ErrUnknownModel, cfg.Model, modelNames())
	}

	exp, err := factory(cfg)
	if err != nil {
		return nil, err
	}

	if exp.close == nil {
		exp.close = func() error { return nil }
	}

	return exp, nil
}

func gptBuilder(cfg GPTConfig) gpt.Builder {
	return gpt.MakeBuilder().
		WithPeriod(modeling.VTimeInSec(cfg.Period)).
		WithProcessingTime(modeling.VTimeInSec(cfg.ProcessingTime)).
		WithObservationTime(modeling.VTimeInSec(cfg.ObservationTime))
}

func buildGPT(cfg Config) (*experiment, error) {
	return &experiment{top: gptBuilder(cfg.GPT).BuildGPT("gpt")}, nil
}

func buildEFP(cfg Config) (*experiment, error) {
	return &experiment{top: gptBuilder(cfg.GPT).BuildEFP("efp")}, nil
}

func buildBlinky(cfg Config) (*experiment, error) {
	system := blinky.MakeBuilder().
		WithSlowToggleTime(modeling.VTimeInSec(cfg.Blinky.SlowToggleTime)).
		WithFastToggleTime(modeling.VTimeInSec(cfg.Blinky.FastToggleTime)).
		BuildSystem("blinky")

	return &experiment{
		top:    system,
		button: realtime.NewAsyncEvent(system.Button, true),
	}, nil
}

func buildIEStream(cfg Config) (*experiment, error) {
	path := cfg.IEStream.File

	switch cfg.IEStream.Type {
	case "int":
		return streamExperiment(path, iestream.Int)
	case "float":
		return streamExperiment(path, iestream.Float64)
	case "bool":
		return streamExperiment(path, iestream.Bool)
	case "string":
		return streamExperiment(path, iestream.String)
	default:
		return nil, fmt.Errorf("unknown iestream type %q", cfg.IEStream.Type)
	}
}

func streamExperiment[T any](
	path string,
	decode iestream.Decoder[T],
) (*experiment, error) {
	stream, err := iestream.Open("stream", path, decode)
	if err != nil {
		return nil, err
	}

	top := modeling.NewCoupled("top")

	out, err := modeling.AddOutPort[T](top, "out")
	if err == nil {
		err = top.AddComponent(stream)
	}

	if err == nil {
		err = top.AddCoupling(stream.Out, out)
	}

	if err != nil {
		stream.Close()
		return nil, err
	}

	return &experiment{top: top, close: stream.Close}, nil
}
