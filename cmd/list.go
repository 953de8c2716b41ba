package cmd

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func NewListCommand() *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the persisted photo list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			c, err := newComponents(cmd.Context(), v, zap.L().Named("list"))
			if err != nil {
				return err
			}
			defer func() {
				err = multierr.Append(err, c.Close())
			}()

			if err := c.gallery.Load(cmd.Context()); err != nil {
				return err
			}
			return printPhotos(cmd.OutOrStdout(), outputFlag(v), c.gallery.Photos())
		},
	}

	flags := cmd.Flags()
	addGalleryFlags(flags, v)
	addOutputFlag(flags, v)

	return cmd
}

func printPhotos(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format: %s (supported: json, yaml)", format)
	}
}
