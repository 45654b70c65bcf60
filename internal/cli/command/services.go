package command

import (
	"context"

	"github.com/yndnr/provisiond-go/internal/server/config"
	"github.com/yndnr/provisiond-go/internal/server/httpserver/handler"
	"github.com/yndnr/provisiond-go/internal/storage/checkinlog"
	"github.com/yndnr/provisiond-go/internal/storage/keyfile"
	"github.com/yndnr/provisiond-go/internal/telemetry/logger"
	"github.com/yndnr/provisiond-go/internal/telemetry/metric"
)

func buildCheckin(cfg *config.Config, log logger.Logger, m *metric.Registry) (*component, error) {
	sink, err := checkinlog.Open(cfg.Checkin.LogFile)
	if err != nil {
		return nil, err
	}
	log.Info("check-in log opened", "path", sink.Path(), "max_body_bytes", cfg.Checkin.MaxBodyBytes)

	return &component{
		Handler: handler.NewCheckin(sink, cfg.Checkin.MaxBodyBytes, m),
		Close:   sink.Close,
	}, nil
}

func buildSSHKey(cfg *config.Config, log logger.Logger, m *metric.Registry) (*component, error) {
	keys := keyfile.NewReader(cfg.SSHKey.KeyFile)
	inspectKey(keys, log)

	return &component{
		Handler: handler.NewSSHKey(keys, m),
		Ready: func(context.Context) error {
			_, err := keys.Read()
			return err
		},
	}, nil
}

// inspectKey logs what the key server is about to serve. Problems are
// warnings only: the file is read again on every request.
func inspectKey(keys *keyfile.Reader, log logger.Logger) {
	log = log.With("path", keys.Path())

	data, err := keys.Read()
	if err != nil {
		log.Warn("ssh key file not readable at startup", "error", err)
		return
	}

	info, err := keyfile.Inspect(data)
	if err != nil {
		log.Warn("ssh key file is not an authorized_keys entry; serving as-is", "error", err)
		return
	}
	log.Info("serving ssh key", info.LogAttrs()...)
}
