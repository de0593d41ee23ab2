package cmd

import (
	"github.com/BatikanHyt/postbench/pkg/payload"
	"github.com/BatikanHyt/postbench/pkg/protocols"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// newRunConfig reads the run settings and loads the body once. Validation is
// left to protocols.NewRunner.
func newRunConfig(v *viper.Viper, fs afero.Fs) (*protocols.Config, error) {
	body, err := payload.Load(fs, v.GetString("body-file"), v.GetString("body"))
	if err != nil {
		return nil, err
	}
	return &protocols.Config{
		URL:                v.GetString("url"),
		Body:               body,
		Concurrency:        v.GetInt("concurrency"),
		RequestsPerWorker:  v.GetInt("requests-per-worker"),
		PoolMaxIdlePerHost: v.GetInt("pool-max-idle-per-host"),
		HTTP2:              v.GetBool("http2"),
	}, nil
}
