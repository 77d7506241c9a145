package env

import (
	"errors"
	"fmt"
	"os"

	"intent-resolver/internal/application/port/output"
	"intent-resolver/internal/domain/entity"
	"intent-resolver/internal/usecase/executor"
	"intent-resolver/internal/usecase/search"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid resolver config")

const (
	EnvThreshold       = "RESOLVER_THRESHOLD"
	EnvMaxResults      = "RESOLVER_MAX_RESULTS"
	EnvNearRadius      = "RESOLVER_NEAR_RADIUS"
	EnvMaxAlternatives = "RESOLVER_MAX_ALTERNATIVES"
	EnvConfigPath      = "RESOLVER_CONFIG"
	EnvLogLevel        = "RESOLVER_LOG_LEVEL"
	EnvOpenRouterKey   = "OPENROUTER_API_KEY"
	EnvOpenRouterModel = "OPENROUTER_MODEL"
)

// ResolverConfig: всё, что настраивается файлом resolver.yaml.
type ResolverConfig struct {
	Search      search.Config              `yaml:"search"`
	Executor    executor.Config            `yaml:"executor"`
	Recovery    entity.RecoveryConfig      `yaml:"recovery"`
	Annotations []entity.ElementAnnotation `yaml:"annotations" validate:"dive"`
}

func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		Search:   search.DefaultConfig(),
		Executor: executor.DefaultConfig(),
		Recovery: executor.DefaultRecoveryConfig(),
	}
}

// LoadResolverConfig читает YAML поверх значений по умолчанию, применяет
// переопределения из окружения и валидирует результат. Пустой path: только
// дефолты и окружение.
func LoadResolverConfig(path string, cfg output.ConfigPort) (ResolverConfig, error) {
	rc := DefaultResolverConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return rc, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &rc); err != nil {
			return rc, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
	}

	if cfg != nil {
		applyOverrides(&rc, cfg)
	}

	if err := Validate(rc); err != nil {
		return rc, err
	}
	return rc, nil
}

func applyOverrides(rc *ResolverConfig, cfg output.ConfigPort) {
	rc.Search.Threshold = cfg.GetFloat(EnvThreshold, rc.Search.Threshold)
	rc.Search.MaxResults = cfg.GetInt(EnvMaxResults, rc.Search.MaxResults)
	rc.Search.NearRadius = cfg.GetFloat(EnvNearRadius, rc.Search.NearRadius)
	rc.Executor.MaxAlternatives = cfg.GetInt(EnvMaxAlternatives, rc.Executor.MaxAlternatives)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func Validate(rc ResolverConfig) error {
	if err := validate.Struct(rc); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed on %q", ErrInvalidConfig, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
