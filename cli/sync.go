package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"portfoliosync/apperrors"
	"portfoliosync/logger"
	"portfoliosync/service"
)

const commandTimeout = 10 * time.Minute

//nolint:gochecknoglobals // Cobra boilerplate
var dryRun bool

//nolint:gochecknoglobals // Cobra boilerplate
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run the full pipeline",
	Long: `Run GitHub ingestion, LeetCode ingestion, achievement generation and the
skills/about update in that order. Achievements need both ingestion stages to
succeed and skills/about needs GitHub. The exit status is non-zero unless every
stage succeeded.

Example:
  portfoliosync sync
  portfoliosync sync --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd.Context(), dryRun, func(ctx context.Context, svc *service.Service) *service.Report {
			return svc.Run(ctx)
		})
	},
}

func stageCommand(use, short, stage string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), false, func(ctx context.Context, svc *service.Service) *service.Report {
				return svc.RunStage(ctx, stage)
			})
		},
	}
}

func runPipeline(ctx context.Context, dry bool, run func(context.Context, *service.Service) *service.Report) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	a, err := newApp(ctx, cfg, appOptions{requireStore: true, dryRun: dry})
	if err != nil {
		return err
	}
	defer a.Close()

	return reportError(run(ctx, a.svc))
}

// reportError turns an incomplete report into an error. A single failed
// stage keeps its error kind so configuration problems exit accordingly.
func reportError(report *service.Report) error {
	if report.AllSucceeded() {
		return nil
	}
	if len(report.Stages) == 1 && report.Stages[0].ErrorKind != "" {
		stage := report.Stages[0]
		return &apperrors.Error{Kind: stage.ErrorKind, Source: stage.Name, Err: fmt.Errorf("%w: %s", errIncomplete, stage.Message)}
	}
	return errIncomplete
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Fetch and compute everything but skip database writes")
	rootCmd.AddCommand(
		syncCmd,
		stageCommand("fetch-github", "Fetch and store GitHub repositories, contributions and stats", service.StageGitHub),
		stageCommand("fetch-leetcode", "Fetch and store LeetCode statistics", service.StageLeetCode),
		stageCommand("generate-achievements", "Generate AI achievements when the source data changed", service.StageAchievements),
		stageCommand("update-skills-about", "Derive the skills and about documents from stored GitHub data", service.StageSkillsAbout),
	)
}
