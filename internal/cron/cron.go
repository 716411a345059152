package cron

import (
	"context"
	"os"
	"sync"

	cronv3 "github.com/robfig/cron/v3"

	"github.com/customeros/mailsift/config"
	"github.com/customeros/mailsift/interfaces"
	"github.com/customeros/mailsift/internal/logger"
	"github.com/customeros/mailsift/internal/tracing"
	"github.com/customeros/mailsift/internal/utils"
)

const (
	GroupIngestion = "ingestion"
	GroupStaging   = "staging"

	AppSourceCron = "cron"
)

var jobLocks = struct {
	sync.Mutex
	locks map[string]*sync.Mutex
}{
	locks: map[string]*sync.Mutex{
		GroupIngestion: new(sync.Mutex),
		GroupStaging:   new(sync.Mutex),
	},
}

type CronManager struct {
	cfg       *config.Config
	log       logger.Logger
	cron      *cronv3.Cron
	stopCh    chan struct{}
	stopOnce  sync.Once
	jobIDs    map[string]cronv3.EntryID
	ingestion interfaces.IngestionService
}

func NewCronManager(cfg *config.Config, log logger.Logger, ingestion interfaces.IngestionService) *CronManager {
	return &CronManager{
		cfg:       cfg,
		log:       log,
		stopCh:    make(chan struct{}),
		jobIDs:    make(map[string]cronv3.EntryID),
		ingestion: ingestion,
	}
}

// Stop waits for running jobs and stops the scheduler
func (cm *CronManager) Stop() {
	if cm.cron != nil {
		cm.log.Info("Stopping cron manager")
		ctx := cm.cron.Stop()
		<-ctx.Done()
	}
	cm.stopOnce.Do(func() { close(cm.stopCh) })
}

func (cm *CronManager) registerJobs(c *cronv3.Cron) error {
	cronConfig := cm.cfg.CronConfig
	if cronConfig == nil {
		return nil
	}

	if cronConfig.CronScheduleHeartbeat != "" {
		podName := os.Getenv("POD_NAME")
		if podName == "" {
			podName = "local"
		}
		err := cm.addJob(c, "heartbeat", cronConfig.CronScheduleHeartbeat, func() {
			cm.log.Infof("Cron heartbeat from pod: %s", podName)
		})
		if err != nil {
			return err
		}
	}

	if cronConfig.CronScheduleStagingSweep != "" {
		err := cm.addJob(c, "staging_sweep", cronConfig.CronScheduleStagingSweep, func() {
			jobLocks.locks[GroupStaging].Lock()
			defer jobLocks.locks[GroupStaging].Unlock()
			cm.sweepStaging()
		})
		if err != nil {
			return err
		}
	}

	if cronConfig.CronScheduleIngestion != "" {
		err := cm.addJob(c, "ingestion", cronConfig.CronScheduleIngestion, func() {
			jobLocks.locks[GroupIngestion].Lock()
			defer jobLocks.locks[GroupIngestion].Unlock()
			cm.runScheduledIngestion()
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (cm *CronManager) addJob(c *cronv3.Cron, name, schedule string, job func()) error {
	id, err := c.AddFunc(schedule, func() {
		defer tracing.RecoverAndLogToJaeger(cm.log)
		job()
	})
	if err != nil {
		cm.log.Errorf("Could not add %s cron job: %v", name, err)
		return err
	}
	cm.jobIDs[name] = id
	cm.log.Infof("Registered %s job with schedule: %s", name, schedule)
	return nil
}

// StartCron registers the configured jobs and starts the scheduler
func (cm *CronManager) StartCron() error {
	cm.log.Info("Starting cron manager")
	c := cronv3.New(
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger),
			cronv3.Recover(cronv3.DefaultLogger),
		),
	)
	if err := cm.registerJobs(c); err != nil {
		return err
	}
	c.Start()
	cm.cron = c
	return nil
}

func (cm *CronManager) sweepStaging() {
	span, ctx := tracing.StartTracerSpan(context.Background(), "CronManager.sweepStaging")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	result, err := cm.ingestion.SweepStaging(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Staging sweep failed: %v", err)
		return
	}
	span.LogKV("deleted", result.Deleted)
}

func (cm *CronManager) runScheduledIngestion() {
	if cm.cfg.IngestionConfig == nil || len(cm.cfg.IngestionConfig.ScheduledUserIDs) == 0 {
		return
	}

	span, ctx := tracing.StartTracerSpan(context.Background(), "CronManager.runScheduledIngestion")
	defer span.Finish()
	tracing.TagComponentCronJob(span)
	ctx = utils.SetAppSourceInContext(ctx, AppSourceCron)

	for _, userID := range cm.cfg.IngestionConfig.ScheduledUserIDs {
		if userID == "" {
			continue
		}
		report := cm.ingestion.RunIngestion(ctx, userID)
		if !report.Success {
			cm.log.Warnf("Scheduled ingestion for user %s failed: %s", userID, report.Error)
		}
	}
}
