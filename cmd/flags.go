package cmd

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func logLevelFlag(v *viper.Viper) string {
	return v.GetString("log.level")
}

func addLogLevelFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("log-level", "info", "log level")
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindEnv("log.level", "LOG_LEVEL")
}

func logFormatFlag(v *viper.Viper) string {
	return v.GetString("log.format")
}

func addLogFormatFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("log-format", "json", "log format")
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = v.BindEnv("log.format", "LOG_FORMAT")
}

func addressFlag(v *viper.Viper) string {
	return v.GetString("address")
}

func addAddressFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("address", ":8080", "Address to bind to (host:port)")
	_ = v.BindPFlag("address", flags.Lookup("address"))
	_ = v.BindEnv("address", "PHOTOGALLERY_ADDRESS")
}

func basePathFlag(v *viper.Viper) string {
	return v.GetString("base_path")
}

func addBasePathFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("base-path", "/gallery", "Base path to export the webserver on")
	_ = v.BindPFlag("base_path", flags.Lookup("base-path"))
	_ = v.BindEnv("base_path", "PHOTOGALLERY_BASE_PATH")
}

func platformFlag(v *viper.Viper) string {
	return v.GetString("platform")
}

func addPlatformFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("platform", "hybrid", "Platform kind (hybrid, web)")
	_ = v.BindPFlag("platform", flags.Lookup("platform"))
	_ = v.BindEnv("platform", "PHOTOGALLERY_PLATFORM")
}

func storageTypeFlag(v *viper.Viper) string {
	return v.GetString("storage.type")
}

func addStorageTypeFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-type", "filesystem", "Storage type for photos and history (filesystem, blob)")
	_ = v.BindPFlag("storage.type", flags.Lookup("storage-type"))
	_ = v.BindEnv("storage.type", "PHOTOGALLERY_STORAGE_TYPE")
}

func storageDirFlag(v *viper.Viper) string {
	return v.GetString("storage.dir")
}

func addStorageDirFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-dir", "/var/lib/photogallery", "Where to put my data")
	_ = v.BindPFlag("storage.dir", flags.Lookup("storage-dir"))
	_ = v.BindEnv("storage.dir", "PHOTOGALLERY_STORAGE_DIR")
}

func storageBlobBucketFlag(v *viper.Viper) string {
	return v.GetString("storage.blob.bucket")
}

func addStorageBlobBucketFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-blob-bucket", "", "Blob bucket URL (gs://, s3://, azblob://, file://, mem://)")
	_ = v.BindPFlag("storage.blob.bucket", flags.Lookup("storage-blob-bucket"))
	_ = v.BindEnv("storage.blob.bucket", "PHOTOGALLERY_STORAGE_BLOB_BUCKET")
}

func storageBlobPrefixFlag(v *viper.Viper) string {
	return v.GetString("storage.blob.prefix")
}

func addStorageBlobPrefixFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-blob-prefix", "", "Key prefix inside the blob bucket")
	_ = v.BindPFlag("storage.blob.prefix", flags.Lookup("storage-blob-prefix"))
	_ = v.BindEnv("storage.blob.prefix", "PHOTOGALLERY_STORAGE_BLOB_PREFIX")
}

func kvTypeFlag(v *viper.Viper) string {
	return v.GetString("kv.type")
}

func addKVTypeFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("kv-type", "history", "Key-value store for the photo list (history, sqlite, postgres, memory)")
	_ = v.BindPFlag("kv.type", flags.Lookup("kv-type"))
	_ = v.BindEnv("kv.type", "PHOTOGALLERY_KV_TYPE")
}

func kvKeyFlag(v *viper.Viper) string {
	return v.GetString("kv.key")
}

func addKVKeyFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("kv-key", "photos", "Key the photo list is stored under")
	_ = v.BindPFlag("kv.key", flags.Lookup("kv-key"))
	_ = v.BindEnv("kv.key", "PHOTOGALLERY_KV_KEY")
}

func historyLimitFlag(v *viper.Viper) int {
	return v.GetInt("history.limit")
}

func addHistoryLimitFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("history-limit", 2, "Number of history records to keep")
	_ = v.BindPFlag("history.limit", flags.Lookup("history-limit"))
	_ = v.BindEnv("history.limit", "PHOTOGALLERY_HISTORY_LIMIT")
}

func sqlitePathFlag(v *viper.Viper) string {
	return v.GetString("sqlite.path")
}

func addSQLitePathFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("sqlite-path", "/var/lib/photogallery/photogallery.db", "SQLite database file")
	_ = v.BindPFlag("sqlite.path", flags.Lookup("sqlite-path"))
	_ = v.BindEnv("sqlite.path", "PHOTOGALLERY_SQLITE_PATH")
}

func postgresURLFlag(v *viper.Viper) string {
	return v.GetString("postgres.url")
}

func addPostgresURLFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("postgres-url", "", "Postgres connection string")
	_ = v.BindPFlag("postgres.url", flags.Lookup("postgres-url"))
	_ = v.BindEnv("postgres.url", "PHOTOGALLERY_POSTGRES_URL")
}

func cameraTypeFlag(v *viper.Viper) string {
	return v.GetString("camera.type")
}

func addCameraTypeFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("camera-type", "file", "Camera adapter (file, exec)")
	_ = v.BindPFlag("camera.type", flags.Lookup("camera-type"))
	_ = v.BindEnv("camera.type", "PHOTOGALLERY_CAMERA_TYPE")
}

func cameraSourceFlag(v *viper.Viper) string {
	return v.GetString("camera.source")
}

func addCameraSourceFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("camera-source", "", "Image file the file camera picks")
	_ = v.BindPFlag("camera.source", flags.Lookup("camera-source"))
	_ = v.BindEnv("camera.source", "PHOTOGALLERY_CAMERA_SOURCE")
}

func cameraCommandFlag(v *viper.Viper) string {
	return v.GetString("camera.command")
}

func addCameraCommandFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("camera-command", "libcamera-still -n -q {quality} -o {output}", "Capture command of the exec camera")
	_ = v.BindPFlag("camera.command", flags.Lookup("camera-command"))
	_ = v.BindEnv("camera.command", "PHOTOGALLERY_CAMERA_COMMAND")
}

func cameraTempDirFlag(v *viper.Viper) string {
	return v.GetString("camera.temp_dir")
}

func addCameraTempDirFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("camera-temp-dir", "", "Directory for captured images before they are stored")
	_ = v.BindPFlag("camera.temp_dir", flags.Lookup("camera-temp-dir"))
	_ = v.BindEnv("camera.temp_dir", "PHOTOGALLERY_CAMERA_TEMP_DIR")
}

func cameraQualityFlag(v *viper.Viper) int {
	return v.GetInt("camera.quality")
}

func addCameraQualityFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("camera-quality", 100, "JPEG quality 0-100")
	_ = v.BindPFlag("camera.quality", flags.Lookup("camera-quality"))
	_ = v.BindEnv("camera.quality", "PHOTOGALLERY_CAMERA_QUALITY")
}

func cameraCorrectOrientationFlag(v *viper.Viper) bool {
	return v.GetBool("camera.correct_orientation")
}

func addCameraCorrectOrientationFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("camera-correct-orientation", true, "Rotate captured images upright")
	_ = v.BindPFlag("camera.correct_orientation", flags.Lookup("camera-correct-orientation"))
	_ = v.BindEnv("camera.correct_orientation", "PHOTOGALLERY_CAMERA_CORRECT_ORIENTATION")
}

func bridgeBaseURLFlag(v *viper.Viper) string {
	return v.GetString("bridge.base_url")
}

func addBridgeBaseURLFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("bridge-base-url", "http://localhost:8080", "Base URL file URIs are bridged to")
	_ = v.BindPFlag("bridge.base_url", flags.Lookup("bridge-base-url"))
	_ = v.BindEnv("bridge.base_url", "PHOTOGALLERY_BRIDGE_BASE_URL")
}

func fetchTimeoutFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("fetch.timeout")
}

func addFetchTimeoutFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("fetch-timeout", 30*time.Second, "Timeout for fetching web paths")
	_ = v.BindPFlag("fetch.timeout", flags.Lookup("fetch-timeout"))
	_ = v.BindEnv("fetch.timeout", "PHOTOGALLERY_FETCH_TIMEOUT")
}

func acknowledgedWritesFlag(v *viper.Viper) bool {
	return v.GetBool("acknowledged_writes")
}

func addAcknowledgedWritesFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("acknowledged-writes", false, "Wait for the photo list to be persisted before a capture returns")
	_ = v.BindPFlag("acknowledged_writes", flags.Lookup("acknowledged-writes"))
	_ = v.BindEnv("acknowledged_writes", "PHOTOGALLERY_ACKNOWLEDGED_WRITES")
}

func countFlag(v *viper.Viper) int {
	return v.GetInt("count")
}

func addCountFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("count", 1, "Number of photos to capture")
	_ = v.BindPFlag("count", flags.Lookup("count"))
}

func concurrencyFlag(v *viper.Viper) int {
	return v.GetInt("concurrency")
}

func addConcurrencyFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("concurrency", 1, "Number of captures running at the same time")
	_ = v.BindPFlag("concurrency", flags.Lookup("concurrency"))
}

func outputFlag(v *viper.Viper) string {
	return v.GetString("output")
}

func addOutputFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.StringP("output", "o", "json", "Output format (json, yaml)")
	_ = v.BindPFlag("output", flags.Lookup("output"))
}

func gracefulPeriodFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("graceful_period")
}

func addGracefulPeriodFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("graceful-period", 0, "Graceful period before shutdown")
	_ = v.BindPFlag("graceful_period", flags.Lookup("graceful-period"))
	_ = v.BindEnv("graceful_period", "PHOTOGALLERY_GRACEFUL_PERIOD")
}

func serviceHealthzEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.healthz.enabled")
}

func addServiceHealthzEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-healthz-enabled", false, "Enable healthz service")
	_ = v.BindPFlag("service.healthz.enabled", flags.Lookup("service-healthz-enabled"))
}

func servicePrometheusEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.prometheus.enabled")
}

func addServicePrometheusEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-prometheus-enabled", false, "Enable prometheus service")
	_ = v.BindPFlag("service.prometheus.enabled", flags.Lookup("service-prometheus-enabled"))
}

func servicePProfEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.pprof.enabled")
}

func addServicePProfEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-pprof-enabled", false, "Enable pprof service")
	_ = v.BindPFlag("service.pprof.enabled", flags.Lookup("service-pprof-enabled"))
}

func otelEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("otel.enabled")
}

func addOtelEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("otel-enabled", false, "Enable otel service")
	_ = v.BindPFlag("otel.enabled", flags.Lookup("otel-enabled"))
	_ = v.BindEnv("otel.enabled", "OTEL_ENABLED")
}

// addGalleryFlags registers every flag newComponents reads.
func addGalleryFlags(flags *pflag.FlagSet, v *viper.Viper) {
	addPlatformFlag(flags, v)
	addStorageTypeFlag(flags, v)
	addStorageDirFlag(flags, v)
	addStorageBlobBucketFlag(flags, v)
	addStorageBlobPrefixFlag(flags, v)
	addKVTypeFlag(flags, v)
	addKVKeyFlag(flags, v)
	addHistoryLimitFlag(flags, v)
	addSQLitePathFlag(flags, v)
	addPostgresURLFlag(flags, v)
	addCameraTypeFlag(flags, v)
	addCameraSourceFlag(flags, v)
	addCameraCommandFlag(flags, v)
	addCameraTempDirFlag(flags, v)
	addCameraQualityFlag(flags, v)
	addCameraCorrectOrientationFlag(flags, v)
	addBridgeBaseURLFlag(flags, v)
	addFetchTimeoutFlag(flags, v)
	addAcknowledgedWritesFlag(flags, v)
}
