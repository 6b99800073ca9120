// cmd/tools/manifest-tool/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"premium-workers/internal/artifacts"
	"premium-workers/internal/premium"
)

const defaultManifest = "configs/artifact-manifest.json"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		help(out)
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		path := fs.String("path", defaultManifest, "Path to manifest file")
		load := fs.Bool("load", false, "Also load every band's model and scaler")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := validateManifest(*path, *load); err != nil {
			return fmt.Errorf("manifest validation failed: %w", err)
		}
		fmt.Fprintln(out, "Manifest validation passed.")

	case "show":
		fs := flag.NewFlagSet("show", flag.ContinueOnError)
		path := fs.String("path", defaultManifest, "Path to manifest file")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		m, err := artifacts.LoadManifest(*path)
		if err != nil {
			return err
		}
		showManifest(out, m)

	case "set-policy":
		fs := flag.NewFlagSet("set-policy", flag.ContinueOnError)
		path := fs.String("path", defaultManifest, "Path to manifest file")
		version := fs.String("version", "", "Encoding policy version, one of the known policies")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *version == "" {
			fs.Usage()
			return fmt.Errorf("version is required for set-policy")
		}
		if err := setPolicy(*path, *version); err != nil {
			return err
		}
		fmt.Fprintf(out, "Policy set to %s\n", *version)

	case "set-model":
		fs := flag.NewFlagSet("set-model", flag.ContinueOnError)
		path := fs.String("path", defaultManifest, "Path to manifest file")
		band := fs.String("band", "", "Band to update (young or adult)")
		kind := fs.String("type", "", "Model type (linear, xgboost, remote)")
		location := fs.String("location", "", "Model file path, or URL for remote models")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *band == "" || *kind == "" || *location == "" {
			fs.Usage()
			return fmt.Errorf("band, type and location are required for set-model")
		}
		if err := setModel(*path, premium.Band(*band), *kind, *location); err != nil {
			return err
		}
		fmt.Fprintf(out, "Updated %s model to %s %s\n", *band, *kind, *location)

	case "help":
		help(out)

	default:
		help(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

func validateManifest(path string, load bool) error {
	reg, err := openForManifest(path)
	if err != nil {
		return err
	}
	if !load {
		return nil
	}
	return reg.Load(context.Background())
}

// openForManifest runs the registry with the manifest's own policy so that
// validation does not depend on the service default.
func openForManifest(path string) (*artifacts.Registry, error) {
	m, err := artifacts.LoadManifest(path)
	if err != nil {
		return nil, err
	}
	policy, err := premium.LookupPolicy(m.PolicyVersion)
	if err != nil {
		return nil, err
	}
	return artifacts.NewRegistry(m, artifacts.RegistryOptions{Policy: policy})
}

func showManifest(out io.Writer, m *artifacts.Manifest) {
	fmt.Fprintf(out, "Version:      %s\n", m.Version)
	fmt.Fprintf(out, "Policy:       %s\n", m.PolicyVersion)
	fmt.Fprintf(out, "Last updated: %s\n", m.LastUpdated)

	bands := make([]string, 0, len(m.Bands))
	for b := range m.Bands {
		bands = append(bands, b)
	}
	sort.Strings(bands)
	for _, b := range bands {
		e := m.Bands[b]
		where := e.Model.Path
		if e.Model.Type == artifacts.ModelRemote {
			where = e.Model.URL
		}
		fmt.Fprintf(out, "%-6s model=%s (%s)", b, e.Model.Type, where)
		if e.Scaler != nil {
			fmt.Fprintf(out, " scaler=%s (%s)", e.Scaler.Type, e.Scaler.Path)
		}
		fmt.Fprintln(out)
	}
}

func setPolicy(path, version string) error {
	if _, err := premium.LookupPolicy(version); err != nil {
		return fmt.Errorf("%v (known: %v)", err, premium.PolicyVersions())
	}
	m, err := artifacts.LoadManifest(path)
	if err != nil {
		return err
	}
	m.PolicyVersion = version
	return m.Save(path)
}

func setModel(path string, band premium.Band, kind, location string) error {
	m, err := artifacts.LoadManifest(path)
	if err != nil {
		return err
	}
	entry, ok := m.Entry(band)
	if !ok {
		return fmt.Errorf("band %s not found", band)
	}

	switch kind {
	case artifacts.ModelLinear, artifacts.ModelXGBoost:
		entry.Model = artifacts.ModelEntry{Type: kind, Path: location, Features: entry.Model.Features}
	case artifacts.ModelRemote:
		entry.Model = artifacts.ModelEntry{Type: kind, URL: location, Features: entry.Model.Features}
	default:
		return fmt.Errorf("unknown model type: %s", kind)
	}
	m.Bands[string(band)] = entry
	return m.Save(path)
}

func help(out io.Writer) {
	fmt.Fprintln(out, "Usage: manifest-tool <command> [options]")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  validate    Validate the manifest, optionally loading every artifact (-load)")
	fmt.Fprintln(out, "  show        Print the manifest")
	fmt.Fprintln(out, "  set-policy  Change the encoding policy the artifacts were trained with")
	fmt.Fprintln(out, "  set-model   Point a band at a different model")
	fmt.Fprintln(out, "  help        Show this help message")
	fmt.Fprintln(out, "Use 'manifest-tool <command> -h' for more information about a command.")
}
