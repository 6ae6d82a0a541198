package translate

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/born-ml/transcoder/internal/config"
	"github.com/born-ml/transcoder/internal/nn"
	"github.com/born-ml/transcoder/internal/registry"
	"github.com/born-ml/transcoder/internal/tokenizer"
	"github.com/born-ml/transcoder/internal/vocab"
)

// Service bundles everything built from one configuration.
type Service struct {
	*Translator

	Config     *config.Config
	Device     nn.Device // resolved from Config.Model.Device
	Vocabulary *vocab.Vocabulary
	Registry   *registry.Registry
}

// Open builds a Service from a validated configuration: it loads the
// vocabulary, every configured direction and the splitter.
//
// A direction whose weights fail to load does not fail Open; requests for it
// return registry.ErrDirectionUnavailable. Open fails when the vocabulary
// cannot be loaded, when its size disagrees with model.vocab_size, or when
// no direction could be loaded at all.
func Open(cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	device, err := cfg.Model.ResolveDevice()
	if err != nil {
		return nil, err
	}
	logger.Info("device resolved", "configured", cfg.Model.Device, "device", device)

	v, err := vocab.Load(cfg.Vocabulary)
	if err != nil {
		return nil, err
	}
	if v.Size() != cfg.Model.VocabSize {
		return nil, fmt.Errorf("%w: vocabulary %s has %d tokens, model.vocab_size is %d",
			config.ErrInvalid, cfg.Vocabulary, v.Size(), cfg.Model.VocabSize)
	}

	splitter, err := tokenizer.New(cfg.Tokenizer)
	if err != nil {
		return nil, err
	}

	modelCfg := cfg.Model
	modelCfg.Device = device
	reg, err := registry.Open(&modelCfg, cfg.Models, registry.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if len(reg.Available()) == 0 {
		return nil, fmt.Errorf("%w: no direction could be loaded", registry.ErrDirectionUnavailable)
	}

	tr := NewTranslator(reg, v,
		WithLogger(logger),
		WithSplitter(splitter),
		WithMaxSteps(cfg.Decode.MaxSteps),
		WithKeepEndMarker(cfg.Decode.KeepEndMarker),
	)
	return &Service{
		Translator: tr,
		Config:     cfg,
		Device:     device,
		Vocabulary: v,
		Registry:   reg,
	}, nil
}
