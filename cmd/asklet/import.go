package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/asklet/pkg/asklet/belief"
	"github.com/cognicore/asklet/pkg/asklet/oracle/domain"
	"github.com/cognicore/asklet/pkg/asklet/oracle/matrix"
	"github.com/cognicore/asklet/pkg/asklet/store/sqlite"
)

var (
	importMatrix string
	importDB     string
)

// importCmd seeds a domain database from a matrix document
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a matrix file into a domain database",
	Long: `Copy every target, attribute and weight of a matrix document into a
domain database. Each weight is recorded as one answer, so importing into an
existing domain blends the matrix with the answers already collected.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importMatrix, "matrix", "", "matrix YAML file (required)")
	importCmd.Flags().StringVar(&importDB, "db", "", "domain database path (required)")
	importCmd.MarkFlagRequired("matrix")
	importCmd.MarkFlagRequired("db")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sum, err := importMatrixFile(ctx, importMatrix, importDB, cfg.Scale)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d targets, %d questions, %d answers into %s\n",
		sum.Targets, sum.Questions, sum.Answers, importDB)
	fmt.Printf("Domain now holds %d targets and %d questions\n", sum.DomainTargets, sum.DomainQuestions)
	return nil
}

// importSummary is what one import added plus the size of the domain after it.
type importSummary struct {
	domain.ImportStats
	DomainTargets   int64
	DomainQuestions int
}

func importMatrixFile(ctx context.Context, matrixPath, dbPath string, scale belief.Scale) (importSummary, error) {
	var sum importSummary

	m, err := matrix.Load(matrixPath, matrix.Options{Logger: logger})
	if err != nil {
		return sum, err
	}

	st, err := sqlite.OpenSQLite(ctx, dbPath, scale)
	if err != nil {
		return sum, fmt.Errorf("open domain: %w", err)
	}
	defer st.Close()

	sum.ImportStats, err = domain.Import(ctx, st, m)
	if err != nil {
		return sum, err
	}

	if sum.DomainTargets, err = st.CountTargets(ctx); err != nil {
		return sum, fmt.Errorf("count targets: %w", err)
	}
	questions, err := st.Questions(ctx)
	if err != nil {
		return sum, fmt.Errorf("list questions: %w", err)
	}
	sum.DomainQuestions = len(questions)

	logger.Info("matrix imported",
		zap.String("matrix", matrixPath),
		zap.String("db", dbPath),
		zap.Int("targets", sum.Targets),
		zap.Int("questions", sum.Questions),
		zap.Int("answers", sum.Answers),
		zap.Int64("domain_targets", sum.DomainTargets),
		zap.Int("domain_questions", sum.DomainQuestions))
	return sum, nil
}
