package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kode4food/kubetour/internal/catalog"
	"github.com/kode4food/kubetour/internal/config"
	"github.com/kode4food/kubetour/internal/explain"
	"github.com/kode4food/kubetour/internal/genai"
	"github.com/kode4food/kubetour/pkg/api"
)

func explainCmd(cfg *config.Config) *cobra.Command {
	var field bool

	cmd := &cobra.Command{
		Use:   "explain <component|field>",
		Short: "Explain a component or manifest field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := genai.NewClient(cfg.GenAI.ClientConfig())
			svc := explain.NewService(gen, catalog.Default(), 1)

			var res *api.ExplainResponse
			var err error
			if field {
				res, err = svc.ExplainField(cmd.Context(), args[0])
			} else {
				res, err = svc.ExplainComponent(
					cmd.Context(), api.ComponentID(args[0]),
				)
			}
			if err != nil {
				if kind := genai.KindOf(err); kind != api.ErrorKindUnknown {
					return fmt.Errorf("%s: %w", kind, err)
				}
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, titleStyle.Render(res.Subject))
			_, err = fmt.Fprintln(out, res.Text)
			return err
		},
	}
	cmd.Flags().BoolVar(&field, "field", false,
		"Treat the argument as a manifest field path")
	return cmd
}
