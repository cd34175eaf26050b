package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dmitrijs2005/boostmanager/internal/client/models"
	"github.com/dmitrijs2005/boostmanager/internal/validation"
)

func newOrdersCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"order"},
		Short:   "Manage boosting orders",
	}
	cmd.AddCommand(
		newOrdersListCmd(app),
		newOrdersGetCmd(app),
		newOrdersCreateCmd(app),
		newOrdersUpdateCmd(app),
		newOrdersDeleteCmd(app),
		newOrdersExportCmd(app),
	)
	return cmd
}

func newOrdersListCmd(app func() *App) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := app().api.ListOrders(cmd.Context(), search)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				cmd.Println("No orders found.")
				return nil
			}
			return printOrders(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by order number, booster, service or e-mail")
	return cmd
}

func newOrdersGetCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := app().api.GetOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, o)
		},
	}
}

// orderFlags binds the order form to command flags.
type orderFlags struct {
	form     validation.OrderForm
	weapons  int
	askNotes bool
}

func (f *orderFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.form.Booster, "booster", "", "booster name")
	fs.StringVar(&f.form.ServiceType, "service", "", "service type")
	fs.IntVar(&f.weapons, "weapons", 0, "weapon quantity (camouflage services)")
	fs.StringVar(&f.form.Supplier, "supplier", "", "supplier")
	fs.StringVar(&f.form.AccountEmail, "account-email", "", "game account e-mail")
	fs.StringVar(&f.form.AccountPassword, "account-password", "", "game account password")
	fs.StringVar(&f.form.RecoveryCode, "recovery-code", "", "account recovery code")
	fs.StringVar(&f.form.RecoveryEmail, "recovery-email", "", "account recovery e-mail")
	fs.StringVar(&f.form.Platform, "platform", "", "platform")
	fs.StringVar(&f.form.StartDate, "start", "", "start date (YYYY-MM-DD)")
	fs.StringVar(&f.form.EndDate, "end", "", "end date (YYYY-MM-DD)")
	fs.StringVar(&f.form.Status, "status", "", "order status")
	fs.StringVar(&f.form.Currency, "currency", "", "order currency (default BRL)")
	fs.StringVar(&f.form.BoosterCurrency, "booster-currency", "", "booster payment currency (default BRL)")
	fs.Float64Var(&f.form.TotalValue, "total", 0, "order total")
	fs.Float64Var(&f.form.BoosterValue, "booster-value", 0, "amount owed to the booster")
	fs.StringVar(&f.form.Observation, "observation", "", "free-text notes")
	fs.BoolVar(&f.askNotes, "edit-observation", false, "type the notes interactively")
}

// apply copies every flag set on the command line onto dst.
func (f *orderFlags) apply(fs *pflag.FlagSet, dst *validation.OrderForm) {
	src := f.form
	set := map[string]func(){
		"booster":          func() { dst.Booster = src.Booster },
		"service":          func() { dst.ServiceType = src.ServiceType },
		"weapons":          func() { w := f.weapons; dst.WeaponQuantity = &w },
		"supplier":         func() { dst.Supplier = src.Supplier },
		"account-email":    func() { dst.AccountEmail = src.AccountEmail },
		"account-password": func() { dst.AccountPassword = src.AccountPassword },
		"recovery-code":    func() { dst.RecoveryCode = src.RecoveryCode },
		"recovery-email":   func() { dst.RecoveryEmail = src.RecoveryEmail },
		"platform":         func() { dst.Platform = src.Platform },
		"start":            func() { dst.StartDate = src.StartDate },
		"end":              func() { dst.EndDate = src.EndDate },
		"status":           func() { dst.Status = src.Status },
		"currency":         func() { dst.Currency = src.Currency },
		"booster-currency": func() { dst.BoosterCurrency = src.BoosterCurrency },
		"total":            func() { dst.TotalValue = src.TotalValue },
		"booster-value":    func() { dst.BoosterValue = src.BoosterValue },
		"observation":      func() { dst.Observation = src.Observation },
	}
	for name, fn := range set {
		if fs.Changed(name) {
			fn()
		}
	}
}

func (f *orderFlags) notes(a *App, form *validation.OrderForm) error {
	if !f.askNotes {
		return nil
	}
	text, err := GetMultiline(a.reader, "Observation", a.out)
	if err != nil {
		return err
	}
	form.Observation = text
	return nil
}

// formFromOrder is the editable state of an existing order.
func formFromOrder(o *models.Order) validation.OrderForm {
	form := validation.OrderForm{
		Booster:         o.Booster,
		ServiceType:     o.ServiceType,
		WeaponQuantity:  o.WeaponQuantity,
		Supplier:        o.Supplier,
		AccountEmail:    o.AccountEmail,
		AccountPassword: o.AccountPassword,
		RecoveryCode:    o.RecoveryCode,
		RecoveryEmail:   o.RecoveryEmail,
		Platform:        o.Platform,
		StartDate:       o.StartDate.Format("2006-01-02"),
		Status:          o.Status,
		Currency:        o.Currency,
		BoosterCurrency: o.BoosterCurrency,
		TotalValue:      o.TotalValue,
		BoosterValue:    o.BoosterValue,
		Observation:     o.Observation,
	}
	if o.EndDate != nil {
		form.EndDate = o.EndDate.Format("2006-01-02")
	}
	return form
}

func checkOrderForm(form *validation.OrderForm) error {
	form.Normalize()
	return form.Validate().Err()
}

func newOrdersCreateCmd(app func() *App) *cobra.Command {
	var f orderFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			form := validation.OrderForm{}
			f.apply(cmd.Flags(), &form)
			if err := f.notes(a, &form); err != nil {
				return err
			}
			if err := checkOrderForm(&form); err != nil {
				return err
			}

			o, err := a.api.CreateOrder(cmd.Context(), &form)
			if err != nil {
				return err
			}
			cmd.Printf("Order %s created (%s).\n", o.OrderNumber, o.ID)
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newOrdersUpdateCmd(app func() *App) *cobra.Command {
	var f orderFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			ctx := cmd.Context()

			current, err := a.api.GetOrder(ctx, args[0])
			if err != nil {
				return err
			}
			form := formFromOrder(current)
			f.apply(cmd.Flags(), &form)
			if err := f.notes(a, &form); err != nil {
				return err
			}
			if err := checkOrderForm(&form); err != nil {
				return err
			}

			o, err := a.api.UpdateOrder(ctx, args[0], &form)
			if err != nil {
				return err
			}
			cmd.Printf("Order %s updated.\n", o.OrderNumber)
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newOrdersDeleteCmd(app func() *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if !yes {
				ok, err := Confirm(a.reader, "Delete order "+args[0]+"?", a.out)
				if err != nil {
					return err
				}
				if !ok {
					cmd.Println("Cancelled.")
					return nil
				}
			}
			if err := a.api.DeleteOrder(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmd.Println("Order deleted.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newOrdersExportCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export all orders as JSON and print the download link",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := app().api.ExportOrders(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("Exported %d order(s).\n", res.Count)
			if res.URL != "" {
				cmd.Printf("Download (valid until %s): %s\n", res.ExpiresAt.Local().Format("2006-01-02 15:04"), res.URL)
			}
			return nil
		},
	}
}
