package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"eduquest/internal/engine"
	"eduquest/internal/ui"
)

func newShopCmd() *cobra.Command {
	var offers bool
	cmd := &cobra.Command{
		Use:   "shop",
		Short: "Browse the shop",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			svc.Tick(ctx)
			entries := svc.Shop()
			title := "Shop"
			if offers {
				entries = svc.LimitedOffers()
				title = "Limited offers"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", ui.Heading(ui.IconBox, title), ui.Gold.Render(fmt.Sprintf("%s %d", ui.IconCoin, svc.Snapshot().Profile.Gold)))
			for _, e := range entries {
				fmt.Fprintln(out, shopLine(e))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offers, "offers", false, "only limited offers")
	return cmd
}

func shopLine(e engine.ShopEntry) string {
	price := ui.Gold.Render(fmt.Sprintf("%d", e.Cost))
	if !e.Affordable {
		price = ui.Muted.Render(fmt.Sprintf("%d", e.Cost))
	}
	tag := ""
	switch {
	case e.Owned:
		tag = ui.Good.Render(" owned")
	case e.Quantity > 0:
		tag = ui.Muted.Render(fmt.Sprintf(" x%d", e.Quantity))
	}
	return fmt.Sprintf("%s %s %s%s %s", price, ui.Muted.Render(e.ID), e.Name, tag, ui.Dim.Render(e.Description))
}

func newBuyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buy <item_id>",
		Short: "Buy a shop item",
		Args:  exactArgs(1, "item_id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.PurchaseItem(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Gold left", svc.Snapshot().Profile.Gold))
			return nil
		},
	}
}

func newUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <item_id>",
		Short: "Use a consumable from your inventory",
		Args:  exactArgs(1, "item_id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.UseItem(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Good.Render(ui.IconBolt+" Used"), res.ItemID, ui.Muted.Render(fmt.Sprintf("(%d left)", res.Remaining)))
			return nil
		},
	}
}
