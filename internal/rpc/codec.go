package rpc

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/danielpatrickdp/montyhall/internal/infer"
	"github.com/danielpatrickdp/montyhall/internal/model"
	"google.golang.org/protobuf/types/known/structpb"
)

// ErrMalformed is returned when a wire message is missing fields or has
// fields of the wrong kind.
var ErrMalformed = errors.New("malformed message")

// #region query
// EncodeQuery converts a query to its wire form. The seed travels as a
// decimal string since Struct numbers are doubles.
func EncodeQuery(q infer.Query) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"contestant_door": int(q.ContestantDoor),
		"observations":    choicesToMap(q.Observations),
		"particles":       q.Particles,
		"seed":            strconv.FormatUint(q.Seed, 10),
	})
}

// DecodeQuery parses a wire query.
func DecodeQuery(s *structpb.Struct) (infer.Query, error) {
	fields := s.GetFields()

	contestant, err := intField(fields, "contestant_door")
	if err != nil {
		return infer.Query{}, err
	}
	particles, err := intField(fields, "particles")
	if err != nil {
		return infer.Query{}, err
	}
	seedStr, ok := fields["seed"].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return infer.Query{}, fmt.Errorf("%w: seed must be a string", ErrMalformed)
	}
	seed, err := strconv.ParseUint(seedStr.StringValue, 10, 64)
	if err != nil {
		return infer.Query{}, fmt.Errorf("%w: seed: %v", ErrMalformed, err)
	}
	obs, err := choicesFromValue(fields["observations"])
	if err != nil {
		return infer.Query{}, fmt.Errorf("observations: %w", err)
	}

	return infer.Query{
		ContestantDoor: model.Door(contestant),
		Observations:   obs,
		Particles:      particles,
		Seed:           seed,
	}, nil
}

// #endregion query

// #region population
// EncodePopulation converts a population to its wire form.
func EncodePopulation(p infer.Population) (*structpb.Struct, error) {
	particles := make([]interface{}, len(p.Particles))
	for i, pt := range p.Particles {
		particles[i] = map[string]interface{}{
			"choices":    choicesToMap(pt.Choices),
			"log_weight": pt.LogWeight,
			"weight":     pt.Weight,
		}
	}
	return structpb.NewStruct(map[string]interface{}{
		"log_marginal": p.LogMarginal,
		"ess":          p.ESS,
		"particles":    particles,
	})
}

// DecodePopulation parses a wire population.
func DecodePopulation(s *structpb.Struct) (infer.Population, error) {
	fields := s.GetFields()

	logMarginal, err := numberField(fields, "log_marginal")
	if err != nil {
		return infer.Population{}, err
	}
	ess, err := numberField(fields, "ess")
	if err != nil {
		return infer.Population{}, err
	}
	list, ok := fields["particles"].GetKind().(*structpb.Value_ListValue)
	if !ok {
		return infer.Population{}, fmt.Errorf("%w: particles must be a list", ErrMalformed)
	}

	values := list.ListValue.GetValues()
	pop := infer.Population{
		Particles:   make([]infer.Particle, len(values)),
		LogMarginal: logMarginal,
		ESS:         ess,
	}
	for i, v := range values {
		ptFields := v.GetStructValue().GetFields()
		if ptFields == nil {
			return infer.Population{}, fmt.Errorf("%w: particle %d is not an object", ErrMalformed, i)
		}
		choices, err := choicesFromValue(ptFields["choices"])
		if err != nil {
			return infer.Population{}, fmt.Errorf("particle %d: %w", i, err)
		}
		lw, err := numberField(ptFields, "log_weight")
		if err != nil {
			return infer.Population{}, fmt.Errorf("particle %d: %w", i, err)
		}
		w, err := numberField(ptFields, "weight")
		if err != nil {
			return infer.Population{}, fmt.Errorf("particle %d: %w", i, err)
		}
		pop.Particles[i] = infer.Particle{Choices: choices, LogWeight: lw, Weight: w}
	}
	return pop, nil
}

// #endregion population

// #region helpers
func choicesToMap(c model.Choices) map[string]interface{} {
	out := make(map[string]interface{}, len(c))
	for k, d := range c {
		out[k] = int(d)
	}
	return out
}

func choicesFromValue(v *structpb.Value) (model.Choices, error) {
	if v == nil {
		return model.Choices{}, nil
	}
	sv, ok := v.GetKind().(*structpb.Value_StructValue)
	if !ok {
		return nil, fmt.Errorf("%w: choices must be an object", ErrMalformed)
	}
	out := make(model.Choices, len(sv.StructValue.GetFields()))
	for addr := range sv.StructValue.GetFields() {
		n, err := intField(sv.StructValue.GetFields(), addr)
		if err != nil {
			return nil, err
		}
		out[addr] = model.Door(n)
	}
	return out, nil
}

func numberField(fields map[string]*structpb.Value, name string) (float64, error) {
	nv, ok := fields[name].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a number", ErrMalformed, name)
	}
	return nv.NumberValue, nil
}

func intField(fields map[string]*structpb.Value, name string) (int, error) {
	f, err := numberField(fields, name)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s must be an integer, got %v", ErrMalformed, name, f)
	}
	// -math.MinInt is the first float64 past the int range.
	if f < math.MinInt || f >= -math.MinInt {
		return 0, fmt.Errorf("%w: %s out of range, got %v", ErrMalformed, name, f)
	}
	return int(f), nil
}

// #endregion helpers
