// Package config turns the environment variables declared in
// internal/common/environment.go into a single typed, validated Config,
// the way a small slice of the teacher's command construction (cmd/root.go's
// PersistentPreRunE, common/environment.go) gathers ambient settings before
// any component runs.
package config

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/foldermover/foldermover/internal/common"
)

type Config struct {
	AWSAccessKeyID   string
	AWSSecretKey     string
	S3Endpoint       string
	S3Bucket         string
	S3Prefix         string
	Source           string
	Destination      string
	LargeThresholdGB float64
	WorkDir          string
	RcloneConfig     string

	S3MaxRetries       int
	MaxRetryDuration   int // seconds
	DiskLimitPercent   float64
	DiskBackpressure   float64
	MaxCompletedKeys   int
	InstanceLockTimout int // seconds

	SplitThreshold     int
	MaxZipSizeGB       float64
	MaxParallelWorkers int
	DownloadThreads    int
	BombRatioCap       float64
	SkipUpload         bool
}

// Load reads every variable named in common.VisibleEnvironmentVariables (plus
// the two required secrets) and returns a validated Config, or a
// classification-free error suitable for a fatal startup failure (spec
// section 6: "non-zero on fatal startup failure").
func Load() (*Config, error) {
	c := &Config{
		AWSAccessKeyID: common.GetEnvironmentVariable(common.EEnvironmentVariable.AWSAccessKeyID()),
		AWSSecretKey:   common.GetEnvironmentVariable(common.EEnvironmentVariable.AWSSecretAccessKey()),
		S3Endpoint:     common.GetEnvironmentVariable(common.EEnvironmentVariable.S3Endpoint()),
		S3Bucket:       common.GetEnvironmentVariable(common.EEnvironmentVariable.S3Bucket()),
		S3Prefix:       common.GetEnvironmentVariable(common.EEnvironmentVariable.S3Prefix()),
		Source:         common.GetEnvironmentVariable(common.EEnvironmentVariable.Source()),
		Destination:    common.GetEnvironmentVariable(common.EEnvironmentVariable.Destination()),
		WorkDir:        common.GetEnvironmentVariable(common.EEnvironmentVariable.WorkDir()),
		RcloneConfig:   common.GetEnvironmentVariable(common.EEnvironmentVariable.RcloneConfig()),
	}

	if c.AWSAccessKeyID == "" || c.AWSSecretKey == "" {
		return nil, errors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are required")
	}
	if c.S3Bucket == "" {
		return nil, errors.New("S3_BUCKET is required")
	}
	if !strings.HasSuffix(c.S3Prefix, "/") {
		c.S3Prefix += "/"
	}

	var err error
	if c.LargeThresholdGB, err = parseFloat(common.EEnvironmentVariable.LargeFileThresholdGB()); err != nil {
		return nil, err
	}
	if c.S3MaxRetries, err = parseInt(common.EEnvironmentVariable.S3MaxRetries()); err != nil {
		return nil, err
	}
	if c.MaxRetryDuration, err = parseInt(common.EEnvironmentVariable.MaxRetryDuration()); err != nil {
		return nil, err
	}
	if c.DiskLimitPercent, err = parseFloat(common.EEnvironmentVariable.DiskLimitPercent()); err != nil {
		return nil, err
	}
	if c.DiskBackpressure, err = parseFloat(common.EEnvironmentVariable.DiskBackpressurePercent()); err != nil {
		return nil, err
	}
	if c.MaxCompletedKeys, err = parseInt(common.EEnvironmentVariable.MaxCompletedKeys()); err != nil {
		return nil, err
	}
	if c.InstanceLockTimout, err = parseInt(common.EEnvironmentVariable.InstanceLockTimeout()); err != nil {
		return nil, err
	}
	if c.SplitThreshold, err = parseInt(common.EEnvironmentVariable.SplitThreshold()); err != nil {
		return nil, err
	}
	if c.MaxZipSizeGB, err = parseFloat(common.EEnvironmentVariable.MaxZipSizeGB()); err != nil {
		return nil, err
	}
	if c.MaxParallelWorkers, err = parseInt(common.EEnvironmentVariable.MaxParallelWorkers()); err != nil {
		return nil, err
	}
	if c.DownloadThreads, err = parseInt(common.EEnvironmentVariable.DownloadThreads()); err != nil {
		return nil, err
	}
	if c.BombRatioCap, err = parseFloat(common.EEnvironmentVariable.BombRatioCap()); err != nil {
		return nil, err
	}
	c.SkipUpload = strings.EqualFold(common.GetEnvironmentVariable(common.EEnvironmentVariable.SkipUpload()), "true")

	return c, nil
}

func parseInt(ev common.EnvironmentVariable) (int, error) {
	v := common.GetEnvironmentVariable(ev)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid value %q for %s", v, ev.Name)
	}
	return n, nil
}

func parseFloat(ev common.EnvironmentVariable) (float64, error) {
	v := common.GetEnvironmentVariable(ev)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid value %q for %s", v, ev.Name)
	}
	return f, nil
}

// MaxZipSizeBytes returns the archive-size cap in bytes.
func (c *Config) MaxZipSizeBytes() int64 {
	return int64(c.MaxZipSizeGB * (1 << 30))
}

// LargeThresholdBytes returns the large/normal split threshold in bytes.
func (c *Config) LargeThresholdBytes() int64 {
	return int64(c.LargeThresholdGB * (1 << 30))
}
