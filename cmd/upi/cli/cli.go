// Package cli implements the upi client commands.
package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

// flags
var (
	flags struct {
		gateway string
		bank    string
		// registration
		name     string
		password string
		branch   string
		mobile   string
		pin      string
		balance  int64
		// transfers
		token        string
		mmid         string
		amount       int64
		senderBank   string
		merchantBank string
		// qr
		mid string
		out string
	}
)

var root = &cobra.Command{
	Use:   "upi command",
	Short: "Client for the UPI settlement gateway.",
}

var bankAdd = &cobra.Command{
	Use:   "bank-add --bank NAME",
	Short: "Register a bank (no-op if it exists).",
	PreRunE: requireFlags(map[string]*string{
		"bank": &flags.bank,
	}),
	Run: func(cmd *cobra.Command, args []string) {
		body := post("/api/v1/banks", map[string]interface{}{"name": flags.bank})
		fmt.Printf("bank %s registered, branches: %v\n", flags.bank, body["branches"])
	},
}

var merchantAdd = &cobra.Command{
	Use:   "merchant-add --bank NAME --name NAME --password PW --branch CODE [--balance N]",
	Short: "Register a merchant and print its MID and token.",
	PreRunE: requireFlags(map[string]*string{
		"bank": &flags.bank, "name": &flags.name,
		"password": &flags.password, "branch": &flags.branch,
	}),
	Run: func(cmd *cobra.Command, args []string) {
		body := post("/api/v1/merchants", map[string]interface{}{
			"bank": flags.bank, "name": flags.name, "password": flags.password,
			"branch": flags.branch, "balance": flags.balance,
		})
		fmt.Printf("mid:   %v\ntoken: %v\n", body["mid"], body["token"])
	},
}

var userAdd = &cobra.Command{
	Use:   "user-add --bank NAME --name NAME --password PW --branch CODE --mobile NUM --pin PIN [--balance N]",
	Short: "Register a user and print its UID and MMID.",
	PreRunE: requireFlags(map[string]*string{
		"bank": &flags.bank, "name": &flags.name, "password": &flags.password,
		"branch": &flags.branch, "mobile": &flags.mobile, "pin": &flags.pin,
	}),
	Run: func(cmd *cobra.Command, args []string) {
		body := post("/api/v1/users", map[string]interface{}{
			"bank": flags.bank, "name": flags.name, "password": flags.password,
			"branch": flags.branch, "mobile": flags.mobile, "pin": flags.pin,
			"balance": flags.balance,
		})
		fmt.Printf("uid:  %v\nmmid: %v\n", body["uid"], body["mmid"])
	},
}

var merchants = &cobra.Command{
	Use:   "merchants",
	Short: "List every bank's merchants.",
	Run: func(cmd *cobra.Command, args []string) {
		printJSON(get("/api/v1/merchants"))
	},
}

var users = &cobra.Command{
	Use:   "users",
	Short: "List every bank's users.",
	Run: func(cmd *cobra.Command, args []string) {
		printJSON(get("/api/v1/users"))
	},
}

var token = &cobra.Command{
	Use:   "token --mid MID",
	Short: "Print the shareable token for a merchant ID.",
	PreRunE: requireFlags(map[string]*string{
		"mid": &flags.mid,
	}),
	Run: func(cmd *cobra.Command, args []string) {
		body := post("/api/v1/tokens", map[string]interface{}{"mid": flags.mid})
		fmt.Printf("%v\n", body["token"])
	},
}

var qrCmd = &cobra.Command{
	Use:   "qr --mid MID [--out FILE]",
	Short: "Fetch the merchant's QR code PNG.",
	PreRunE: requireFlags(map[string]*string{
		"mid": &flags.mid,
	}),
	Run: func(cmd *cobra.Command, args []string) {
		data := getRaw(fmt.Sprintf("/api/v1/merchants/%s/qr", flags.mid))
		out := flags.out
		if out == "" {
			out = fmt.Sprintf("%s_qr.png", flags.mid)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			fail(err)
		}
		fmt.Printf("QR code saved as %s\n", out)
	},
}

var pay = &cobra.Command{
	Use:   "pay --bank NAME --token TOKEN --mmid MMID --pin PIN --amount N",
	Short: "Settle a same-bank transfer.",
	PreRunE: requireFlags(map[string]*string{
		"bank": &flags.bank, "token": &flags.token,
		"mmid": &flags.mmid, "pin": &flags.pin,
	}),
	Run: func(cmd *cobra.Command, args []string) {
		body := post("/api/v1/transfers/same-bank", map[string]interface{}{
			"bank": flags.bank, "token": flags.token, "mmid": flags.mmid,
			"pin": flags.pin, "amount": flags.amount,
		})
		fmt.Printf("transaction %v settled (%v)\n", body["transaction_id"], body["kind"])
	},
}

var crosspay = &cobra.Command{
	Use:   "crosspay --sender-bank NAME --merchant-bank NAME --token TOKEN --mmid MMID --pin PIN --amount N",
	Short: "Settle a cross-bank transfer.",
	PreRunE: requireFlags(map[string]*string{
		"sender-bank": &flags.senderBank, "merchant-bank": &flags.merchantBank,
		"token": &flags.token, "mmid": &flags.mmid, "pin": &flags.pin,
	}),
	Run: func(cmd *cobra.Command, args []string) {
		body := post("/api/v1/transfers/cross-bank", map[string]interface{}{
			"sender_bank": flags.senderBank, "merchant_bank": flags.merchantBank,
			"token": flags.token, "mmid": flags.mmid, "pin": flags.pin,
			"amount": flags.amount,
		})
		fmt.Printf("transaction %v settled (%v)\n", body["transaction_id"], body["kind"])
	},
}

var ledger = &cobra.Command{
	Use:   "ledger --bank NAME",
	Short: "Dump a bank's ledger.",
	PreRunE: requireFlags(map[string]*string{
		"bank": &flags.bank,
	}),
	Run: func(cmd *cobra.Command, args []string) {
		printJSON(get(fmt.Sprintf("/api/v1/banks/%s/ledger", flags.bank)))
	},
}

var verify = &cobra.Command{
	Use:   "verify --bank NAME",
	Short: "Verify a bank's ledger integrity.",
	PreRunE: requireFlags(map[string]*string{
		"bank": &flags.bank,
	}),
	Run: func(cmd *cobra.Command, args []string) {
		body := get(fmt.Sprintf("/api/v1/banks/%s/ledger/verify", flags.bank))
		fmt.Printf("bank %s ledger valid: %v\n", flags.bank, body["valid"])
	},
}

func init() {
	root.PersistentFlags().StringVar(&flags.gateway, "gateway", "http://localhost:8080", "gateway base URL")

	for _, c := range []*cobra.Command{bankAdd, pay, ledger, verify} {
		c.Flags().StringVar(&flags.bank, "bank", "", "bank name")
	}
	for _, c := range []*cobra.Command{merchantAdd, userAdd} {
		c.Flags().StringVar(&flags.bank, "bank", "", "bank name")
		c.Flags().StringVar(&flags.name, "name", "", "display name")
		c.Flags().StringVar(&flags.password, "password", "", "registration password")
		c.Flags().StringVar(&flags.branch, "branch", "", "branch code")
		c.Flags().Int64Var(&flags.balance, "balance", 0, "opening balance")
	}
	userAdd.Flags().StringVar(&flags.mobile, "mobile", "", "10-digit mobile number")
	userAdd.Flags().StringVar(&flags.pin, "pin", "", "numeric PIN")

	for _, c := range []*cobra.Command{token, qrCmd} {
		c.Flags().StringVar(&flags.mid, "mid", "", "merchant ID")
	}
	qrCmd.Flags().StringVar(&flags.out, "out", "", "output file (default MID_qr.png)")

	for _, c := range []*cobra.Command{pay, crosspay} {
		c.Flags().StringVar(&flags.token, "token", "", "obfuscated merchant token")
		c.Flags().StringVar(&flags.mmid, "mmid", "", "payer MMID")
		c.Flags().StringVar(&flags.pin, "pin", "", "payer PIN")
		c.Flags().Int64Var(&flags.amount, "amount", 0, "transfer amount")
	}
	crosspay.Flags().StringVar(&flags.senderBank, "sender-bank", "", "payer's bank")
	crosspay.Flags().StringVar(&flags.merchantBank, "merchant-bank", "", "merchant's bank")

	root.AddCommand(bankAdd, merchantAdd, userAdd, merchants, users, token, qrCmd, pay, crosspay, ledger, verify)
}

// Execute runs the root command.
func Execute() {
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func requireFlags(required map[string]*string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		for name, value := range required {
			if len(*value) == 0 {
				return fmt.Errorf("required %q flag not set", name)
			}
		}
		return nil
	}
}

func post(path string, payload map[string]interface{}) map[string]interface{} {
	data, err := json.Marshal(payload)
	if err != nil {
		fail(err)
	}
	resp, err := http.Post(flags.gateway+path, "application/json", bytes.NewReader(data))
	if err != nil {
		fail(err)
	}
	return decode(resp)
}

func get(path string) map[string]interface{} {
	resp, err := http.Get(flags.gateway + path)
	if err != nil {
		fail(err)
	}
	return decode(resp)
}

func getRaw(path string) []byte {
	resp, err := http.Get(flags.gateway + path)
	if err != nil {
		fail(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		fail(fmt.Errorf("gateway returned %s", resp.Status))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		fail(err)
	}
	return data
}

func decode(resp *http.Response) map[string]interface{} {
	defer resp.Body.Close()
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		fail(err)
	}
	if resp.StatusCode >= 300 {
		fail(fmt.Errorf("%s: %v", resp.Status, body["error"]))
	}
	return body
}

func printJSON(body map[string]interface{}) {
	out, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		fail(err)
	}
	fmt.Println(string(out))
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "upi: %v\n", err)
	os.Exit(1)
}
