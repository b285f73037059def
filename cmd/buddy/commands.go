package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/dmitrymomot/paymybuddy/pkg/pageguard"
	"github.com/dmitrymomot/paymybuddy/pkg/paymybuddy"
)

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in every tab",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, EnvVars: []string{"BUDDY_PASSWORD"}, Required: true},
		},
		Action: func(c *cli.Context) error {
			s, err := openSession(c, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			ok, err := s.Guard().Login(c.Context, c.String("email"), c.String("password"))
			if err != nil {
				return err
			}
			if !ok {
				return cli.Exit("invalid email or password", 2)
			}
			s.describe()
			return nil
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Log out every tab",
		Action: func(c *cli.Context) error {
			s, err := openSession(c, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			s.Guard().Logout(c.Context)
			s.describe()
			return nil
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Print the user of the shared session",
		Action: func(c *cli.Context) error {
			s, err := openSession(c, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			s.describe()
			return nil
		},
	}
}

func balanceCommand() *cli.Command {
	return &cli.Command{
		Name:  "balance",
		Usage: "Print the balances",
		Action: func(c *cli.Context) error {
			s, err := openSession(c, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			if d := s.Visit("/summary", pageguard.IsAuthenticated); d.Outcome != pageguard.Allow {
				return cli.Exit("not logged in, run: buddy login", 2)
			}

			balances, err := paymybuddy.New(s.API()).Balances(c.Context)
			if err != nil {
				return err
			}
			if len(balances) == 0 {
				s.printf("no money yet\n")
			}
			for _, b := range balances {
				s.printf("%s\n", paymybuddy.FormatAmount(b.Currency, b.Amount))
			}
			return nil
		},
	}
}

func sendCommand() *cli.Command {
	return &cli.Command{
		Name:  "send",
		Usage: "Send money to a contact",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "to", Usage: "contact id", Required: true},
			&cli.StringFlag{Name: "amount", Required: true},
			&cli.StringFlag{Name: "currency", Value: "EUR"},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
		},
		Action: func(c *cli.Context) error {
			s, err := openSession(c, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.authenticated(c.Context); err != nil {
				return err
			}
			s.Navigate("/transfer")

			tx, err := paymybuddy.New(s.API()).SendMoney(c.Context, paymybuddy.SendMoneyRequest{
				RecipientID: c.Int64("to"),
				Currency:    c.String("currency"),
				Amount:      c.String("amount"),
				Description: c.String("description"),
			})
			var funds *paymybuddy.NotEnoughFundsError
			switch {
			case errors.As(err, &funds):
				return cli.Exit("not enough funds, missing "+paymybuddy.FormatAmount(funds.Currency, funds.MissingAmount), 3)
			case err != nil:
				return err
			}
			s.printf("sent %s (fee %s)\n", paymybuddy.FormatAmount(tx.Currency, tx.Amount), tx.Fee)
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Keep a tab open and print every session change",
		Action: func(c *cli.Context) error {
			reloads := make(chan struct{}, 1)
			s, err := openSession(c, func() {
				select {
				case reloads <- struct{}{}:
				default:
				}
			})
			if err != nil {
				return err
			}
			defer s.Close()

			s.describe()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(stop)

			for {
				select {
				case <-reloads:
					s.describe()
				case <-stop:
					return nil
				case <-c.Context.Done():
					return nil
				}
			}
		},
	}
}
