package common

import "os"

// Version is the released version of this binary, reported by `foldermover
// --version` (teacher: rootCmd.Version wired from common.AzcopyVersion).
const Version = "1.0.0"

// EnvironmentVariable describes one optional knob from spec section 6.
// Mirrors the teacher's common.EnvironmentVariable (common/environment.go):
// a plain struct plus a package-level zero value used as a namespace for
// accessor methods, so call sites read EEnvironmentVariable.SomeName().
type EnvironmentVariable struct {
	Name         string
	DefaultValue string
	Description  string
}

// GetEnvironmentVariable returns the variable's value, or its default if unset.
func GetEnvironmentVariable(env EnvironmentVariable) string {
	if v := os.Getenv(env.Name); v != "" {
		return v
	}
	return env.DefaultValue
}

var EEnvironmentVariable = EnvironmentVariable{}

func (EnvironmentVariable) AWSAccessKeyID() EnvironmentVariable {
	return EnvironmentVariable{"AWS_ACCESS_KEY_ID", "", "Staging Store access key (required)"}
}

func (EnvironmentVariable) AWSSecretAccessKey() EnvironmentVariable {
	return EnvironmentVariable{"AWS_SECRET_ACCESS_KEY", "", "Staging Store secret key (required)"}
}

func (EnvironmentVariable) S3Endpoint() EnvironmentVariable {
	return EnvironmentVariable{"S3_ENDPOINT", "s3.amazonaws.com", "Staging Store endpoint"}
}

func (EnvironmentVariable) S3Bucket() EnvironmentVariable {
	return EnvironmentVariable{"S3_BUCKET", "", "Staging bucket name"}
}

func (EnvironmentVariable) S3Prefix() EnvironmentVariable {
	return EnvironmentVariable{"S3_PREFIX", "migration/", "Staging bucket key prefix, must end with '/'"}
}

func (EnvironmentVariable) Source() EnvironmentVariable {
	return EnvironmentVariable{"SOURCE", "", "Transfer Agent source remote spec"}
}

func (EnvironmentVariable) Destination() EnvironmentVariable {
	return EnvironmentVariable{"DESTINATION", "", "Transfer Agent destination remote spec"}
}

func (EnvironmentVariable) LargeFileThresholdGB() EnvironmentVariable {
	return EnvironmentVariable{"LARGE_FILE_THRESHOLD_GB", "20", "Large/normal file size split, in GiB"}
}

func (EnvironmentVariable) WorkDir() EnvironmentVariable {
	return EnvironmentVariable{"WORK_DIR", "./work", "Local scratch root"}
}

func (EnvironmentVariable) RcloneConfig() EnvironmentVariable {
	return EnvironmentVariable{"RCLONE_CONFIG", "", "Path to Transfer Agent configuration file"}
}

func (EnvironmentVariable) S3MaxRetries() EnvironmentVariable {
	return EnvironmentVariable{"S3_MAX_RETRIES", "3", "Max attempts for a Staging Store operation"}
}

func (EnvironmentVariable) MaxRetryDuration() EnvironmentVariable {
	return EnvironmentVariable{"MAX_RETRY_DURATION", "300", "Total retry duration cap, seconds"}
}

func (EnvironmentVariable) DiskLimitPercent() EnvironmentVariable {
	return EnvironmentVariable{"DISK_LIMIT_PERCENT", "80", "Hard disk watermark, triggers split/kill"}
}

func (EnvironmentVariable) DiskBackpressurePercent() EnvironmentVariable {
	return EnvironmentVariable{"DISK_BACKPRESSURE_PERCENT", "70", "Soft disk watermark, triggers throttling sleep"}
}

func (EnvironmentVariable) MaxCompletedKeys() EnvironmentVariable {
	return EnvironmentVariable{"MAX_COMPLETED_KEYS", "5000", "Cap on completed_files entries retained in progress doc"}
}

func (EnvironmentVariable) InstanceLockTimeout() EnvironmentVariable {
	return EnvironmentVariable{"INSTANCE_LOCK_TIMEOUT", "2", "Seconds to wait for the single-instance lock before giving up"}
}

func (EnvironmentVariable) SplitThreshold() EnvironmentVariable {
	return EnvironmentVariable{"SPLIT_THRESHOLD", "1000", "Max normal files per batch (Part1..PartN)"}
}

func (EnvironmentVariable) MaxZipSizeGB() EnvironmentVariable {
	return EnvironmentVariable{"MAX_ZIP_SIZE_GB", "20", "Archive-size cap, GiB, uncompressed scratch-dir bytes"}
}

func (EnvironmentVariable) MaxParallelWorkers() EnvironmentVariable {
	return EnvironmentVariable{"MAX_PARALLEL_WORKERS", "2", "Parallel batch/archive workers per component"}
}

func (EnvironmentVariable) DownloadThreads() EnvironmentVariable {
	return EnvironmentVariable{"DOWNLOAD_THREADS", "8", "Transfer Agent concurrency for a single bulk download"}
}

func (EnvironmentVariable) BombRatioCap() EnvironmentVariable {
	return EnvironmentVariable{"BOMB_RATIO_CAP", "100", "Max extracted/downloaded size ratio before an archive is refused"}
}

func (EnvironmentVariable) SkipUpload() EnvironmentVariable {
	return EnvironmentVariable{"SKIP_UPLOAD", "false", "Treat DESTINATION as a local path and merge explicitly instead of via the Transfer Agent"}
}

// VisibleEnvironmentVariables lists every knob this system recognizes, the
// way the teacher's VisibleEnvironmentVariables documents its own set for
// --help and diagnostics output.
var VisibleEnvironmentVariables = []EnvironmentVariable{
	EEnvironmentVariable.AWSAccessKeyID(),
	EEnvironmentVariable.AWSSecretAccessKey(),
	EEnvironmentVariable.S3Endpoint(),
	EEnvironmentVariable.S3Bucket(),
	EEnvironmentVariable.S3Prefix(),
	EEnvironmentVariable.Source(),
	EEnvironmentVariable.Destination(),
	EEnvironmentVariable.LargeFileThresholdGB(),
	EEnvironmentVariable.WorkDir(),
	EEnvironmentVariable.RcloneConfig(),
	EEnvironmentVariable.S3MaxRetries(),
	EEnvironmentVariable.MaxRetryDuration(),
	EEnvironmentVariable.DiskLimitPercent(),
	EEnvironmentVariable.DiskBackpressurePercent(),
	EEnvironmentVariable.MaxCompletedKeys(),
	EEnvironmentVariable.InstanceLockTimeout(),
	EEnvironmentVariable.SplitThreshold(),
	EEnvironmentVariable.MaxZipSizeGB(),
	EEnvironmentVariable.MaxParallelWorkers(),
	EEnvironmentVariable.DownloadThreads(),
	EEnvironmentVariable.BombRatioCap(),
	EEnvironmentVariable.SkipUpload(),
}
