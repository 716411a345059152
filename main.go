package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/customeros/mailsift/config"
	"github.com/customeros/mailsift/internal/database"
	"github.com/customeros/mailsift/internal/repository"
	"github.com/customeros/mailsift/internal/utils"
	"github.com/customeros/mailsift/server"
	"github.com/customeros/mailsift/services"
)

const appSourceCLI = "mailsift-cli"

func main() {
	app := &cli.App{
		Name:  "mailsift",
		Usage: "classify a mailbox and keep what matters",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "rollback", Usage: "roll back the last migration instead"},
				},
				Action: migrateAction,
			},
			{
				Name:   "server",
				Usage:  "Start the API server and scheduled jobs",
				Action: serverAction,
			},
			{
				Name:  "ingest",
				Usage: "Run one ingestion for a user and print the run report",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Required: true},
				},
				Action: func(c *cli.Context) error {
					return withServices(c, true, func(ctx context.Context, s *services.Services) error {
						report := s.IngestionService.RunIngestion(ctx, c.String("user"))
						if err := printJSON(report); err != nil {
							return err
						}
						if !report.Success {
							return cli.Exit(report.Error, 1)
						}
						return nil
					})
				},
			},
			{
				Name:  "report",
				Usage: "Print the classification report of the stored emails of a user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Required: true},
				},
				Action: func(c *cli.Context) error {
					return withServices(c, true, func(ctx context.Context, s *services.Services) error {
						report, err := s.IngestionService.UserReport(ctx, c.String("user"))
						if err != nil {
							return err
						}
						return printJSON(report)
					})
				},
			},
			{
				Name:  "sweep",
				Usage: "Delete staged attachments older than the given age",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "max-age-hours", Usage: "defaults to STAGING_MAX_AGE_HOURS"},
				},
				Action: func(c *cli.Context) error {
					return withServices(c, false, func(ctx context.Context, s *services.Services) error {
						maxAge := time.Duration(c.Int("max-age-hours")) * time.Hour
						result, err := s.IngestionService.SweepStagingOlderThan(ctx, maxAge)
						if err != nil {
							return err
						}
						return printJSON(result)
					})
				},
			},
			{
				Name:  "authorize",
				Usage: "Authorize Gmail access for a user; without --code prints the consent URL",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Required: true},
					&cli.StringFlag{Name: "code", Usage: "authorization code from the consent page"},
				},
				Action: authorizeAction,
			},
			{
				Name:  "reclassify",
				Usage: "Classify a stored email again",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
				},
				Action: func(c *cli.Context) error {
					return withServices(c, true, func(ctx context.Context, s *services.Services) error {
						classification, err := s.IngestionService.Reclassify(ctx, c.String("email"))
						if err != nil {
							return err
						}
						return printJSON(classification)
					})
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.InitConfig()
	if err != nil {
		return nil, errors.Wrap(err, "config initialization failed")
	}
	if cfg == nil {
		return nil, errors.New("config is empty")
	}
	return cfg, nil
}

func migrateAction(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.InitDatabase(cfg.DatabaseConfig)
	if err != nil {
		return err
	}

	if c.Bool("rollback") {
		if err := repository.RollbackLast(db); err != nil {
			return errors.Wrap(err, "rollback failed")
		}
		log.Println("Rolled back the last migration")
		return nil
	}

	if err := repository.MigrateDB(db); err != nil {
		return errors.Wrap(err, "database migration failed")
	}
	log.Println("Database migration completed successfully")
	return nil
}

func serverAction(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.InitDatabase(cfg.DatabaseConfig)
	if err != nil {
		return err
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("mailsift starting up...")

	srv, err := server.NewServer(cfg, db)
	if err != nil {
		return errors.Wrap(err, "server setup failed")
	}
	if err := srv.Run(); err != nil {
		return errors.Wrap(err, "server startup failed")
	}

	log.Println("Shutdown complete")
	return nil
}

func authorizeAction(c *cli.Context) error {
	return withServices(c, false, func(ctx context.Context, s *services.Services) error {
		if s.GmailProvider == nil {
			return cli.Exit("authorize is only available with MAIL_PROVIDER=gmail", 1)
		}

		userID := c.String("user")
		code := c.String("code")
		if code == "" {
			fmt.Println("Open this URL, grant access, then run authorize again with --code:")
			fmt.Println(s.GmailProvider.AuthCodeURL(userID))
			return nil
		}

		if err := s.GmailProvider.Exchange(ctx, userID, code); err != nil {
			return errors.Wrap(err, "authorization failed")
		}
		fmt.Printf("Stored Gmail token for user %s\n", userID)
		return nil
	})
}

// withServices builds the runtime for one-shot commands. Commands that never
// touch the relational store skip the database connection.
func withServices(c *cli.Context, needDB bool, fn func(ctx context.Context, s *services.Services) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var db *gorm.DB
	if needDB {
		db, err = database.InitDatabase(cfg.DatabaseConfig)
		if err != nil {
			return err
		}
	}

	appLogger, svcs, _, closer, err := server.NewRuntime(cfg, db)
	if err != nil {
		return err
	}
	defer func() {
		_ = svcs.Close()
		_ = closer.Close()
		_ = appLogger.Sync()
	}()

	ctx := utils.SetAppSourceInContext(c.Context, appSourceCLI)
	return fn(ctx, svcs)
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
