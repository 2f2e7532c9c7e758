package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/boula1997/garioush/internal/api"
	"github.com/boula1997/garioush/internal/checkout"
	"github.com/boula1997/garioush/internal/model"
	"github.com/boula1997/garioush/internal/session"
	"github.com/boula1997/garioush/internal/storage"
	"github.com/boula1997/garioush/internal/store"
)

var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Log in and persist the session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		if err := a.session.Login(context.Background(), args[0], args[1]); err != nil {
			if errors.Is(err, session.ErrInvalidCredentials) {
				return errors.New("invalid email or password")
			}
			return err
		}

		fmt.Println("Logged in")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the persisted session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		a.session.Logout()
		fmt.Println("Logged out")
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	Long: `Create a new storefront account.

Registration does not log in automatically; run 'garioush login' afterwards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		fullname, _ := cmd.Flags().GetString("fullname")
		phone, _ := cmd.Flags().GetString("phone")

		err = a.session.Register(context.Background(), api.RegisterRequest{
			Email:                email,
			Password:             password,
			PasswordConfirmation: password,
			FullName:             fullname,
			Phone:                phone,
		})
		if err != nil {
			return err
		}

		fmt.Println("Account created, run 'garioush login' to sign in")
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List catalog categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		st := store.NewCategoriesStore(a.client, a.logger)
		st.Fetch(context.Background())

		categories, err := resolve(st.State())
		if err != nil {
			return err
		}

		w := newTable()
		fmt.Fprintln(w, "ID\tTITLE")
		for _, c := range *categories {
			fmt.Fprintf(w, "%d\t%s\n", c.ID, c.Title)
		}
		return w.Flush()
	},
}

var subcategoriesCmd = &cobra.Command{
	Use:   "subcategories <category-id>",
	Short: "List subcategories of a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid category id %q", args[0])
		}

		a, err := getApp()
		if err != nil {
			return err
		}

		st := store.NewSubcategoriesStore(a.client, a.logger, id)
		st.Fetch(context.Background())

		subcategories, err := resolve(st.State())
		if err != nil {
			return err
		}

		w := newTable()
		fmt.Fprintln(w, "ID\tTITLE")
		for _, s := range *subcategories {
			fmt.Fprintf(w, "%d\t%s\n", s.ID, s.Title)
		}
		return w.Flush()
	},
}

var productsCmd = &cobra.Command{
	Use:   "products <subcategory-id>",
	Short: "List products of a subcategory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid subcategory id %q", args[0])
		}

		a, err := getApp()
		if err != nil {
			return err
		}

		st := store.NewProductsStore(a.client, a.logger, id)
		st.Fetch(context.Background())

		products, err := resolve(st.State())
		if err != nil {
			return err
		}

		w := newTable()
		fmt.Fprintln(w, "ID\tTITLE\tPRICE")
		for _, p := range *products {
			fmt.Fprintf(w, "%d\t%s\t%.2f\n", p.ID, p.Title, p.Price)
		}
		return w.Flush()
	},
}

var productCmd = &cobra.Command{
	Use:   "product <id>",
	Short: "Show a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}

		a, err := getApp()
		if err != nil {
			return err
		}

		st := store.NewProductStore(a.client, a.logger, id)
		st.Fetch(context.Background())

		p, err := resolve(st.State())
		if err != nil {
			return err
		}

		fmt.Printf("ID:          %d\n", p.ID)
		fmt.Printf("Title:       %s\n", p.Title)
		fmt.Printf("Price:       %.2f\n", p.Price)
		if p.Description != "" {
			fmt.Printf("Description: %s\n", p.Description)
		}
		return nil
	},
}

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		a.cart.Fetch(context.Background())
		return printCart(a)
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}

		a, err := getApp()
		if err != nil {
			return err
		}

		a.cart.Add(context.Background(), id)
		return printCart(a)
	},
}

var cartIncreaseCmd = &cobra.Command{
	Use:   "increase <line-id>",
	Short: "Increase quantity of a cart line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		a.cart.Fetch(context.Background())
		a.cart.Increment(context.Background(), args[0])
		return printCart(a)
	},
}

var cartDecreaseCmd = &cobra.Command{
	Use:   "decrease <line-id>",
	Short: "Decrease quantity of a cart line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		a.cart.Fetch(context.Background())
		a.cart.Decrement(context.Background(), args[0])
		return printCart(a)
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <line-id>",
	Short: "Remove a cart line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		a.cart.Remove(context.Background(), args[0])
		return printCart(a)
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List recent orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		a.orders.Fetch(context.Background())

		orders, err := resolve(a.orders.State())
		if err != nil {
			return err
		}

		if len(*orders) == 0 {
			fmt.Println("No orders yet")
			return nil
		}

		w := newTable()
		fmt.Fprintln(w, "ID\tSTATUS\tTOTAL\tCREATED")
		for _, o := range *orders {
			fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\n", o.ID, o.Status, o.Total, o.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var orderCmd = &cobra.Command{
	Use:   "order <id>",
	Short: "Show an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid order id %q", args[0])
		}

		a, err := getApp()
		if err != nil {
			return err
		}

		order, err := a.client.Order(context.Background(), id)
		if err != nil {
			return err
		}

		fmt.Printf("Order:   %d\n", order.ID)
		fmt.Printf("Status:  %s\n", order.Status)
		fmt.Printf("Address: %s\n", order.Address)
		fmt.Printf("Created: %s\n", order.CreatedAt.Format("2006-01-02 15:04"))
		for _, l := range order.Lines {
			fmt.Printf("  %dx %s @ %.2f\n", l.Quantity, l.Title, l.UnitPrice)
		}
		fmt.Printf("Total:   %.2f\n", order.Total)
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		a.profile.Fetch(context.Background())

		p, err := resolve(a.profile.State())
		if err != nil {
			return err
		}

		fmt.Printf("Name:    %s\n", p.FullName)
		fmt.Printf("Email:   %s\n", p.Email)
		fmt.Printf("Phone:   %s\n", p.Phone)
		fmt.Printf("Wallet:  %.2f\n", p.WalletBalance)
		return nil
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		// Бэкенд перезаписывает подмножество профиля целиком, поэтому
		// незаданные флаги заполняются текущими значениями.
		a.profile.Fetch(context.Background())
		current, err := resolve(a.profile.State())
		if err != nil {
			return err
		}

		a.profile.Update(context.Background(), profileUpdateRequest(cmd, current))

		p, err := resolve(a.profile.State())
		if err != nil {
			return err
		}

		fmt.Printf("Profile updated: %s <%s> %s\n", p.FullName, p.Email, p.Phone)
		return nil
	},
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "List notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		st := store.NewNotificationsStore(a.client, a.session, a.logger)
		st.Fetch(context.Background())

		notifications, err := resolve(st.State())
		if err != nil {
			return err
		}

		if len(*notifications) == 0 {
			fmt.Println("No notifications")
			return nil
		}

		for _, n := range *notifications {
			fmt.Printf("[%s] %s\n", n.CreatedAt.Format("2006-01-02 15:04"), n.Title)
			if n.Body != "" {
				fmt.Printf("  %s\n", n.Body)
			}
		}
		return nil
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order from the cart",
	Long: `Place an order from the current cart.

The cart is synchronized before submission; a wallet payment that the server
rejects for insufficient balance leaves the cart untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		address, _ := cmd.Flags().GetString("address")
		mobile, _ := cmd.Flags().GetString("mobile")
		payment, _ := cmd.Flags().GetString("payment")

		a.cart.Fetch(context.Background())
		if _, err := resolve(a.cart.State()); err != nil {
			return err
		}

		order, err := a.flow.SubmitOrder(context.Background(), address, mobile, checkout.Payment(payment))
		if err != nil {
			var vErr *checkout.ValidationError
			switch {
			case errors.As(err, &vErr):
				return fmt.Errorf("invalid %s", vErr.Field)
			case errors.Is(err, checkout.ErrInsufficientBalance):
				return errors.New("wallet balance is not enough for this order")
			}
			return err
		}

		fmt.Printf("Order %d placed, total %.2f\n", order.ID, order.Total)
		return nil
	},
}

var themeCmd = &cobra.Command{
	Use:   "theme [light|dark]",
	Short: "Show or set the UI theme preference",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			theme, err := a.kv.Get(storage.KeyTheme)
			if errors.Is(err, storage.ErrNotFound) {
				theme = "light"
			} else if err != nil {
				return err
			}
			fmt.Println(theme)
			return nil
		}

		if args[0] != "light" && args[0] != "dark" {
			return fmt.Errorf("unknown theme %q", args[0])
		}
		return a.kv.Set(storage.KeyTheme, args[0])
	},
}

var localeCmd = &cobra.Command{
	Use:   "locale [code]",
	Short: "Show or set the request locale",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			fmt.Println(a.client.Locale())
			return nil
		}

		if err := a.kv.Set(storage.KeyLocale, args[0]); err != nil {
			return err
		}
		a.client.SetLocale(args[0])
		return nil
	},
}

func init() {
	registerCmd.Flags().String("email", "", "account email")
	registerCmd.Flags().String("password", "", "account password")
	registerCmd.Flags().String("fullname", "", "full name")
	registerCmd.Flags().String("phone", "", "phone number")
	registerCmd.MarkFlagRequired("email")
	registerCmd.MarkFlagRequired("password")

	profileUpdateCmd.Flags().String("fullname", "", "full name")
	profileUpdateCmd.Flags().String("email", "", "account email")
	profileUpdateCmd.Flags().String("phone", "", "phone number")

	checkoutCmd.Flags().String("address", "", "delivery address")
	checkoutCmd.Flags().String("mobile", "", "contact mobile number")
	checkoutCmd.Flags().String("payment", string(checkout.PaymentWallet), "payment method (wallet, credit_card, cash)")

	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartIncreaseCmd)
	cartCmd.AddCommand(cartDecreaseCmd)
	cartCmd.AddCommand(cartRemoveCmd)

	profileCmd.AddCommand(profileUpdateCmd)

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(subcategoriesCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(productCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(orderCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(localeCmd)
}

// profileUpdateRequest собирает запрос обновления профиля: флаги, заданные
// явно, замещают текущие значения, остальные поля сохраняются как есть.
func profileUpdateRequest(cmd *cobra.Command, current *model.ProfileSnapshot) api.UpdateProfileRequest {
	req := api.UpdateProfileRequest{
		FullName: current.FullName,
		Email:    current.Email,
		Phone:    current.Phone,
	}
	if cmd.Flags().Changed("fullname") {
		req.FullName, _ = cmd.Flags().GetString("fullname")
	}
	if cmd.Flags().Changed("email") {
		req.Email, _ = cmd.Flags().GetString("email")
	}
	if cmd.Flags().Changed("phone") {
		req.Phone, _ = cmd.Flags().GetString("phone")
	}
	return req
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func printCart(a *application) error {
	cart, err := resolve(a.cart.State())
	if err != nil {
		return err
	}

	if len(cart.Items) == 0 {
		fmt.Println("Cart is empty")
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "LINE\tPRODUCT\tQTY\tPRICE")
	for _, l := range cart.Items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\n", l.LineID, l.Title, l.Quantity, l.UnitPrice)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("Total: %.2f\n", cart.Total)
	return nil
}
