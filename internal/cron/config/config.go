package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Staging sweep, every hour
	CronScheduleStagingSweep string `env:"CRON_SCHEDULE_STAGING_SWEEP" envDefault:"0 0 * * * *"`
	// Scheduled ingestion for INGESTION_USER_IDS, disabled unless set
	CronScheduleIngestion string `env:"CRON_SCHEDULE_INGESTION"`
}
