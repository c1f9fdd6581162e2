// Package cmd provides the rentquote commands.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"storefront/internal/logging"
	"storefront/internal/modules/catalog"
	"storefront/internal/modules/pricing"
)

type options struct {
	catalogFile string
	gstRate     string
	verbose     bool
	log         *zap.Logger
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "rentquote",
		Short: "Price furniture and appliance rentals from a catalog file",
		Long: `rentquote loads a catalog (JSON or YAML) and prices rentals with the
same calculator the storefront API uses.

Examples:
  rentquote validate -c catalog.yaml
  rentquote options -c catalog.yaml sofa-3s
  rentquote quote -c catalog.yaml sofa-3s --city Mumbai --tenure 6 --addon damage-protection`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := logging.Config{Level: "warn", Format: "console"}
			if opts.verbose {
				cfg.Level = "debug"
			}
			log, err := logging.New(cfg)
			if err != nil {
				return err
			}
			opts.log = log
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.catalogFile, "catalog", "c", "catalog.yaml", "catalog file (.json, .yaml or .yml)")
	root.PersistentFlags().StringVar(&opts.gstRate, "gst", pricing.DefaultGSTRate.String(), "GST rate applied to the subtotal")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newQuoteCmd(opts), newOptionsCmd(opts), newValidateCmd(opts))
	return root
}

// catalogFile is the on-disk layout: a list of products under "products".
type catalogFile struct {
	Products []*catalog.Product `json:"products" yaml:"products"`
}

func readCatalog(path string) ([]*catalog.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f catalogFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &f)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return f.Products, nil
}

// loadCatalog reads the file into an in-memory catalog. Invalid products are
// returned in rejected and left out of the service.
func (o *options) loadCatalog(ctx context.Context) (svc *catalog.Service, rejected map[int]error, err error) {
	products, err := readCatalog(o.catalogFile)
	if err != nil {
		return nil, nil, err
	}
	svc = catalog.NewService(catalog.NewMemoryStore(), o.log)
	rejected = make(map[int]error)
	for i, p := range products {
		if p == nil {
			rejected[i] = fmt.Errorf("%w: empty entry", catalog.ErrInvalidProduct)
			continue
		}
		if _, err := svc.Create(ctx, p); err != nil {
			rejected[i] = err
		}
	}
	return svc, rejected, nil
}

func (o *options) calculator() (pricing.Calculator, error) {
	rate, err := decimal.NewFromString(o.gstRate)
	if err != nil {
		return pricing.Calculator{}, fmt.Errorf("invalid --gst %q: %w", o.gstRate, err)
	}
	return pricing.NewCalculator(rate)
}
