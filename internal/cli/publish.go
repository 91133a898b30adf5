package cli

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/distmeta/pkg/descriptor"
	derrors "github.com/matzehuels/distmeta/pkg/errors"
	"github.com/matzehuels/distmeta/pkg/integrations"
	"github.com/matzehuels/distmeta/pkg/pipeline"
	"github.com/matzehuels/distmeta/pkg/store"
)

func (c *CLI) publishCommand() *cobra.Command {
	var (
		serverURL string
		marker    string
	)

	cmd := &cobra.Command{
		Use:   "publish [manifest]",
		Short: "Store the descriptor in the configured store or on a distmeta server",
		Long: `Build and validate the descriptor, then store it. Without --server the
configured store is used (a local directory, or MongoDB when
DISTMETA_STORE_BACKEND=mongo); with --server the descriptor is sent to a
running "distmeta serve". Publishing the same version again replaces it.`,
		Example: `  distmeta publish
  distmeta publish --server http://localhost:8080`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := c.app.newRunner().Build(ctx, pipeline.Options{
				Manifest:     manifestArg(args),
				ReadmeMarker: marker,
				Logger:       c.Logger,
			})
			if err != nil {
				return err
			}

			var rec *store.Record
			if serverURL != "" {
				rec, err = publishRemote(ctx, serverURL, d)
			} else {
				rec, err = c.publishLocal(ctx, d)
			}
			if err != nil {
				return err
			}

			printSuccess("Published %s %s", StyleHighlight.Render(d.Name), d.Version)
			printDetail("id %s", rec.ID)
			if serverURL != "" {
				printNextStep("Check against it", "distmeta check --index-url "+strings.TrimRight(serverURL, "/")+"/pypi")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "base URL of a distmeta server (default: publish to the configured store)")
	cmd.Flags().StringVar(&marker, "marker", "", "README marker that ends the long description")

	return cmd
}

func (c *CLI) publishLocal(ctx context.Context, d *descriptor.Descriptor) (*store.Record, error) {
	st, err := c.app.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	c.Logger.Debug("publishing", "store", c.app.Config.Store.Backend)
	return st.Put(ctx, d)
}

// serverError is the error document distmeta serve answers with.
type serverError struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

func publishRemote(ctx context.Context, serverURL string, d *descriptor.Descriptor) (*store.Record, error) {
	client := integrations.NewClient(nil, "", 0, nil)
	var rec store.Record
	err := client.PostJSON(ctx, strings.TrimRight(serverURL, "/")+"/descriptors", d, &rec)

	var statusErr *integrations.StatusError
	if errors.As(err, &statusErr) {
		var body serverError
		if json.Unmarshal(statusErr.Body, &body) == nil && body.Error != "" {
			msg := body.Message
			if len(body.Details) > 0 {
				msg += ": " + strings.Join(body.Details, "; ")
			}
			return nil, derrors.New(derrors.Code(body.Error), "server rejected descriptor: %s", msg)
		}
	}
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeNetwork, err, "publish to %s", serverURL)
	}
	return &rec, nil
}
