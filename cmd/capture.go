package cmd

import (
	"github.com/foomo/photogallery/pkg/gallery"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func NewCaptureCommand() *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture photos and add them to the gallery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			l := zap.L().Named("capture")

			c, err := newComponents(cmd.Context(), v, l)
			if err != nil {
				return err
			}
			defer func() {
				err = multierr.Append(err, c.Close())
			}()

			if err := c.gallery.Load(cmd.Context()); err != nil {
				return err
			}

			captured := make([]gallery.Photo, max(countFlag(v), 0))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(max(concurrencyFlag(v), 1))
			for i := range captured {
				g.Go(func() error {
					photo, err := c.gallery.Capture(ctx)
					if err != nil {
						return err
					}
					captured[i] = *photo
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			return printPhotos(cmd.OutOrStdout(), outputFlag(v), captured)
		},
	}

	flags := cmd.Flags()
	addGalleryFlags(flags, v)
	addCountFlag(flags, v)
	addConcurrencyFlag(flags, v)
	addOutputFlag(flags, v)

	return cmd
}
