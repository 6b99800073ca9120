package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"premium-workers/internal/api"
	"premium-workers/internal/artifacts"
	"premium-workers/internal/audit"
	"premium-workers/internal/common/errors"
	"premium-workers/internal/common/logger"
	"premium-workers/internal/premium"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "premium-cli",
		Usage: "Health insurance premium estimates from the command line",
		Commands: []*cli.Command{
			cmdQuote,
			cmdOptions,
		},
	}
}

var cmdQuote = &cli.Command{
	Name:  "quote",
	Usage: "Estimate the premium for one applicant",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "manifest",
			Value:   "configs/artifact-manifest.json",
			Sources: cli.EnvVars("ARTIFACTS_MANIFEST_PATH"),
			Usage:   "artifact manifest describing the fitted models",
		},
		&cli.StringFlag{
			Name:    "policy",
			Sources: cli.EnvVars("ARTIFACTS_POLICY_VERSION"),
			Usage:   "encoding policy version (defaults to the current policy)",
		},
		&cli.StringFlag{
			Name:    "currency",
			Value:   premium.DefaultCurrencySymbol,
			Sources: cli.EnvVars("PRICING_CURRENCY_SYMBOL"),
			Usage:   "currency symbol for the formatted premium",
		},
		&cli.StringFlag{
			Name:  "audit-log",
			Usage: "append the prediction record to this file",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "print the quote as JSON",
		},
		&cli.IntFlag{Name: premium.FieldAge, Usage: "age in years"},
		&cli.IntFlag{Name: premium.FieldNumberOfDependants, Usage: "number of dependants"},
		&cli.FloatFlag{Name: premium.FieldIncomeLakhs, Usage: "annual income in lakhs"},
		&cli.IntFlag{Name: premium.FieldGeneticalRisk, Usage: "genetic risk, 0 to 5"},
		&cli.StringFlag{Name: premium.FieldInsurancePlan, Usage: choices(premium.InsurancePlans)},
		&cli.StringFlag{Name: premium.FieldBMICategory, Usage: choices(premium.BMICategories)},
		&cli.StringFlag{Name: premium.FieldSmokingStatus, Usage: choices(premium.SmokingStatuses)},
		&cli.StringFlag{Name: premium.FieldEmploymentStatus, Usage: choices(premium.EmploymentStatuses)},
		&cli.StringFlag{Name: premium.FieldRegion, Usage: choices(premium.Regions)},
		&cli.StringFlag{Name: premium.FieldMedicalHistory, Usage: "e.g. \"Diabetes & Thyroid\""},
		&cli.StringFlag{Name: premium.FieldGender, Usage: choices(premium.Genders)},
		&cli.StringFlag{Name: premium.FieldMaritalStatus, Usage: choices(premium.MaritalStatuses)},
	},
	Action: runQuote,
}

var cmdOptions = &cli.Command{
	Name:  "options",
	Usage: "List the accepted values for each applicant field",
	Action: func(_ context.Context, cmd *cli.Command) error {
		return printJSON(cmd.Root().Writer, api.FormOptions())
	},
}

func choices[T ~string](values []T) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return "one of: " + strings.Join(out, ", ")
}

// applicantFromFlags only carries the flags the user set. The validator fills
// in the rest.
func applicantFromFlags(cmd *cli.Command) map[string]interface{} {
	raw := map[string]interface{}{}
	for _, f := range []string{premium.FieldAge, premium.FieldNumberOfDependants, premium.FieldGeneticalRisk} {
		if cmd.IsSet(f) {
			raw[f] = cmd.Int(f)
		}
	}
	if cmd.IsSet(premium.FieldIncomeLakhs) {
		raw[premium.FieldIncomeLakhs] = cmd.Float(premium.FieldIncomeLakhs)
	}
	for _, f := range []string{
		premium.FieldInsurancePlan, premium.FieldBMICategory, premium.FieldSmokingStatus,
		premium.FieldEmploymentStatus, premium.FieldRegion, premium.FieldMedicalHistory,
		premium.FieldGender, premium.FieldMaritalStatus,
	} {
		if cmd.IsSet(f) {
			raw[f] = cmd.String(f)
		}
	}
	return raw
}

func runQuote(ctx context.Context, cmd *cli.Command) error {
	policy := premium.DefaultPolicy()
	if v := cmd.String("policy"); v != "" {
		p, err := premium.LookupPolicy(v)
		if err != nil {
			return errors.NewInvalidPolicyVersionError(v)
		}
		policy = p
	}

	registry, err := artifacts.Open(cmd.String("manifest"), artifacts.RegistryOptions{Policy: policy})
	if err != nil {
		return fmt.Errorf("open artifacts: %w", err)
	}

	opts := premium.RouterOptions{Bundles: registry, Policy: policy}
	if path := cmd.String("audit-log"); path != "" {
		zl, err := logger.NewFile(path, "info")
		if err != nil {
			return fmt.Errorf("open audit log: %w", err)
		}
		sink := audit.NewMulti(logger.NewNoOpLogger(), audit.NewFileSink(zl))
		defer sink.Close()
		opts.Audit = sink
	}
	router, err := premium.NewRouter(opts)
	if err != nil {
		return err
	}

	raw := applicantFromFlags(cmd)
	pred, err := router.Predict(ctx, raw)
	if err != nil {
		return fmt.Errorf("%s: %w", api.ErrorCode(err), err)
	}

	quote := api.QuoteResponse{
		PredictionID:     pred.ID,
		Premium:          pred.Premium,
		FormattedPremium: premium.FormatPremium(pred.Premium, cmd.String("currency")),
		Band:             string(pred.Band),
		PolicyVersion:    pred.PolicyVersion,
		RiskScore:        pred.RiskIndex,
		Warnings:         api.RangeWarnings(raw),
	}

	w := cmd.Root().Writer
	if cmd.Bool("json") {
		return printJSON(w, quote)
	}
	fmt.Fprintf(w, "Predicted health insurance premium: %s\n", quote.FormattedPremium)
	fmt.Fprintf(w, "Band: %s  Policy: %s  Risk score: %.3f\n", quote.Band, quote.PolicyVersion, quote.RiskScore)
	for _, warning := range quote.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
