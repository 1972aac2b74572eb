package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	oerrors "github.com/lightbake/lbake/internal/errors"
	"github.com/lightbake/lbake/internal/output"
	"github.com/lightbake/lbake/internal/renderset"
	"github.com/lightbake/lbake/internal/validate"
)

type validateOptions struct {
	repair bool
	diff   bool
}

// NewValidateCmd creates the validate command.
func NewValidateCmd(cfg *GlobalConfig) *cobra.Command {
	opts := &validateOptions{}

	c := &cobra.Command{
		Use:   "validate",
		Short: "Check render sets against the scene",
		Long: `Check render sets against the scene.

Reports objects and render layers that render sets still reference but the
scene no longer has, and settings outside their allowed ranges.

Examples:
  # Show what a repair would remove
  lbake validate --diff

  # Remove every dangling reference
  lbake validate --repair`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runValidate(c.Context(), cfg, opts)
		},
	}

	c.Flags().BoolVar(&opts.repair, "repair", false, "Remove dangling references from the stored render sets")
	c.Flags().BoolVar(&opts.diff, "diff", false, "Show the render sets before and after repair")

	return c
}

func runValidate(ctx context.Context, cfg *GlobalConfig, opts *validateOptions) error {
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	col, err := s.load(ctx)
	if err != nil {
		return err
	}

	if err := checkSchema(col); err != nil {
		return err
	}

	report, err := validate.New(s.scene).Validate(ctx, col)
	if err != nil {
		return err
	}
	if report.Empty() {
		output.Println(output.FormatCheckmark(fmt.Sprintf("%d render set(s) valid", col.Len())))
		return nil
	}

	output.Println(issueTable(report).String())

	if opts.diff {
		if err := printRepairDiff(col, validate.Repair(col, report)); err != nil {
			return err
		}
	}

	if !opts.repair {
		return oerrors.NewStaleReferencesError(report.Count(), report.SetNames())
	}

	removed, err := repairStore(ctx, s)
	if err != nil {
		return err
	}
	output.Println(output.FormatCheckmark(fmt.Sprintf("removed %d dangling reference(s)", removed)))
	return nil
}

// checkSchema validates field ranges of every stored record.
func checkSchema(col *renderset.Collection) error {
	checker, err := validate.NewSchemaChecker()
	if err != nil {
		return err
	}
	if err := checker.Check(col); err != nil {
		return fmt.Errorf("%w: %w", oerrors.ErrValidation, err)
	}
	return nil
}

// repairStore re-validates a fresh copy inside one store update and writes
// the repaired collection. It returns the number of removed entries.
func repairStore(ctx context.Context, s *session) (int, error) {
	var removed int
	_, err := s.update(ctx, func(c *renderset.Collection) error {
		report, err := validate.New(s.scene).Validate(ctx, c)
		if err != nil {
			return err
		}
		removed = report.Count()
		*c = *validate.Repair(c, report)
		return nil
	})
	return removed, err
}

func issueTable(report *validate.Report) *output.Table {
	tbl := output.NewTable("RENDER SET", "MISSING OBJECTS", "MISSING LAYERS")
	for _, issues := range report.Sets {
		tbl.Row(
			output.StyleNoun.Render(issues.Name),
			strings.Join(issues.Objects, ", "),
			strings.Join(issues.RenderLayers, ", "),
		)
	}
	return tbl
}

func printRepairDiff(before, after *renderset.Collection) error {
	a, err := renderset.Encode(before)
	if err != nil {
		return err
	}
	b, err := renderset.Encode(after)
	if err != nil {
		return err
	}
	diff, err := output.DiffYAML("stored", a, "repaired", b, output.IsTTY())
	if err != nil {
		return fmt.Errorf("computing diff: %w", err)
	}
	if diff != "" {
		output.Println(diff)
	}
	return nil
}
