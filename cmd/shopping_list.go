package main

import (
	"fmt"

	"github.com/JJublanc/tidimondo-sub001/config"
	"github.com/JJublanc/tidimondo-sub001/services"
	"github.com/spf13/cobra"
)

var (
	listStayID uint
	listFormat string
)

var shoppingListCmd = &cobra.Command{
	Use:   "shopping-list",
	Short: "Print the shopping list of a stay",
	Example: `  tidimondo shopping-list --stay 12
  tidimondo shopping-list --stay 12 --format html > list.html`,
	RunE: runShoppingList,
}

func init() {
	shoppingListCmd.Flags().UintVar(&listStayID, "stay", 0, "stay id")
	shoppingListCmd.Flags().StringVar(&listFormat, "format", "text", "output format: text or html")
	_ = shoppingListCmd.MarkFlagRequired("stay")
}

func runShoppingList(cmd *cobra.Command, args []string) error {
	if listFormat != "text" && listFormat != "html" {
		return fmt.Errorf("unknown format %q", listFormat)
	}
	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	list, err := services.NewShoppingListService(db).ForStay(cmd.Context(), listStayID)
	if err != nil {
		return err
	}
	var doc string
	if listFormat == "html" {
		doc, err = services.RenderHTML(list)
	} else {
		doc, err = services.RenderText(list)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), doc)
	return err
}
