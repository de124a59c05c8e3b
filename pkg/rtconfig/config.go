// Package rtconfig loads and validates VehicleStateInitialParameters (§6),
// following the reference codebase's viper-based config convention plus
// struct-tag validation this project adds.
package rtconfig

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/lintang-b-s/roadtrack/pkg/vehicle"
	"github.com/spf13/viper"
)

// VehicleStateInitialParameters is the validated configuration surface
// documented in §6.
type VehicleStateInitialParameters struct {
	ObsCov        [2]float64 `mapstructure:"obsCov" validate:"required"`
	ObsCovDof     float64    `mapstructure:"obsCovDof" validate:"min=3"`
	OnRoadCov     [2]float64 `mapstructure:"onRoadStateCov" validate:"required"`
	OnRoadCovDof  float64    `mapstructure:"onRoadCovDof" validate:"min=3"`
	OffRoadCov    [4]float64 `mapstructure:"offRoadStateCov" validate:"required"`
	OffRoadCovDof float64    `mapstructure:"offRoadCovDof" validate:"min=5"`
	InitialObsFreq float64   `mapstructure:"initialObsFreq" validate:"gt=0"`
	NumParticles  int        `mapstructure:"numParticles" validate:"gt=0"`
	Seed          int64      `mapstructure:"seed"`
}

// ToFilterParameters adapts the validated config surface into the plain
// value pkg/vehicle.NewFilter expects.
func (p VehicleStateInitialParameters) ToFilterParameters() vehicle.InitialParameters {
	return vehicle.InitialParameters{
		ObsCov:         p.ObsCov,
		ObsCovDof:      p.ObsCovDof,
		OnRoadCov:      p.OnRoadCov,
		OnRoadCovDof:   p.OnRoadCovDof,
		OffRoadCov:     p.OffRoadCov,
		OffRoadCovDof:  p.OffRoadCovDof,
		InitialObsFreq: p.InitialObsFreq,
	}
}

// Read loads VehicleStateInitialParameters from configPath (directory) and
// configName (file base name, e.g. "tracker" for tracker.yaml), following
// viper.SetConfigName/AddConfigPath/ReadInConfig, and validates the result.
func Read(configPath, configName string) (VehicleStateInitialParameters, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.AddConfigPath(configPath)
	v.SetConfigType("yaml")

	v.SetDefault("initialObsFreq", 1.0)
	v.SetDefault("numParticles", 100)

	var params VehicleStateInitialParameters
	if err := v.ReadInConfig(); err != nil {
		return params, fmt.Errorf("reading config: %w", err)
	}
	if err := v.Unmarshal(&params); err != nil {
		return params, fmt.Errorf("unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(params); err != nil {
		return params, fmt.Errorf("validating config: %w", err)
	}
	return params, nil
}
