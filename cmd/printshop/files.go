package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/linemk/printshop/internal/domain/models"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newUploadCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a 3D model (.stl, .obj, .gltf, .glb)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return err
			}

			bar := progressbar.NewOptions(100,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription("uploading "+filepath.Base(path)),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			res, err := c.app.Uploads.Upload(cmd.Context(), path, f, info.Size(), func(pct float64) {
				_ = bar.Set(int(pct))
			})
			_ = bar.Finish()
			if err != nil {
				return describe("upload model", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "uploaded: upload #%d, model #%d (%s)\n", res.Upload.ID, res.Model.ID, res.Model.Status)
			fmt.Fprintf(cmd.OutOrStdout(), "next: printshop quote --model %d --material <id>\n", res.Model.ID)
			return nil
		},
	}
}

func newPreviewCmd(c *cli) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "preview <model-id>",
		Short: "Save the rendered PNG preview of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid model id %q", args[0])
			}
			img, err := c.app.Uploads.Preview(cmd.Context(), id)
			if err != nil {
				return describe("load preview", err)
			}
			if out == "" {
				out = fmt.Sprintf("model-%d.png", id)
			}
			if err := os.WriteFile(out, img, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "preview saved to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}

func newMaterialsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "materials",
		Short: "List printing materials",
		RunE: func(cmd *cobra.Command, args []string) error {
			materials, err := c.app.Catalog.Materials(cmd.Context(), c.app.Session.Locale())
			if err != nil {
				return describe("load materials", err)
			}
			tw := table(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tMATERIAL")
			for _, m := range materials {
				fmt.Fprintf(tw, "%d\t%s\n", m.ID, m.Label())
			}
			return tw.Flush()
		},
	}
}

func newQuoteCmd(c *cli) *cobra.Command {
	var (
		modelID int64
		req     = models.DefaultQuoteRequest(0)
		add     bool
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Get a price for printing an uploaded model",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.ModelID = modelID
			quote, err := c.app.Quotes.Create(cmd.Context(), req, c.app.Session.Locale())
			if err != nil {
				return describe("get a quote", err)
			}
			renderQuote(cmd, quote)

			if !add {
				fmt.Fprintf(cmd.OutOrStdout(), "add to cart: printshop cart add %d --qty %d\n", quote.ID, req.Qty)
				return nil
			}
			if err := c.app.Carts.AddQuote(cmd.Context(), quote, req.Qty); err != nil {
				return describe("add quote to cart", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), green("added to cart"))
			return nil
		},
	}
	cmd.Flags().Int64Var(&modelID, "model", 0, "uploaded model id")
	cmd.Flags().Int64Var(&req.MaterialID, "material", 0, "material id (see `printshop materials`)")
	cmd.Flags().Float64Var(&req.LayerHeight, "layer", req.LayerHeight, "layer height, mm")
	cmd.Flags().StringVar(&req.Infill, "infill", req.Infill, "infill preset")
	cmd.Flags().IntVar(&req.Qty, "qty", req.Qty, "number of copies")
	cmd.Flags().BoolVar(&add, "add", false, "add the quote to the cart")
	return cmd
}

func renderQuote(cmd *cobra.Command, q *models.Quote) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "quote #%d: %s EUR\n", q.ID, models.FormatMoney(q.PriceEUR))

	b := q.Breakdown
	tw := table(out)
	fmt.Fprintf(tw, "qty\t%d\n", b.Qty)
	fmt.Fprintf(tw, "unit price\t%s EUR\n", models.FormatMoney(b.UnitPriceEUR))
	fmt.Fprintf(tw, "print time\t%d min\n", b.EstTimeMin)
	fmt.Fprintf(tw, "filament\t%.1f g\n", b.EstFilamentG)

	keys := make([]string, 0, len(b.Costs))
	for k := range b.Costs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		label := k
		if l, ok := q.BreakdownLabels[k]; ok && l != "" {
			label = l
		}
		fmt.Fprintf(tw, "%s\t%s EUR\n", label, models.FormatMoney(b.Costs[k]))
	}
	tw.Flush()

	if left, ok := q.TTLLeft(time.Now()); ok {
		fmt.Fprintf(out, "valid for %s\n", left)
	}
}
