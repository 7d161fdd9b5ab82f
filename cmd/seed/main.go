// The seed binary populates a running gateway with the demo network: the
// three banks, a merchant per bank and a pair of users, printing every
// generated identifier so transfers can be issued by hand.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
)

type seedMerchant struct {
	Bank, Name, Branch string
	Balance            int64
}

type seedUser struct {
	Bank, Name, Branch, Mobile, PIN string
	Balance                         int64
}

var merchants = []seedMerchant{
	{Bank: "HDFC", Name: "Chai Point", Branch: "HDFC001", Balance: 1000},
	{Bank: "ICICI", Name: "Book Barn", Branch: "ICICI002", Balance: 2500},
	{Bank: "SBI", Name: "Fresh Mart", Branch: "SBI003", Balance: 500},
}

var users = []seedUser{
	{Bank: "HDFC", Name: "Alice", Branch: "HDFC001", Mobile: "9998887777", PIN: "1234", Balance: 500},
	{Bank: "ICICI", Name: "Bob", Branch: "ICICI001", Mobile: "8887776666", PIN: "4321", Balance: 900},
}

func main() {
	gateway := flag.String("gateway", "http://localhost:8080", "gateway base URL")
	flag.Parse()

	for _, name := range []string{"HDFC", "ICICI", "SBI"} {
		body := post(*gateway+"/api/v1/banks", map[string]interface{}{"name": name})
		fmt.Printf("bank %-6s branches=%v\n", name, body["branches"])
	}

	for _, m := range merchants {
		body := post(*gateway+"/api/v1/merchants", map[string]interface{}{
			"bank": m.Bank, "name": m.Name, "password": "seed-pw",
			"branch": m.Branch, "balance": m.Balance,
		})
		fmt.Printf("merchant %-12s bank=%-6s mid=%v token=%v\n", m.Name, m.Bank, body["mid"], body["token"])
	}

	for _, u := range users {
		body := post(*gateway+"/api/v1/users", map[string]interface{}{
			"bank": u.Bank, "name": u.Name, "password": "seed-pw",
			"branch": u.Branch, "mobile": u.Mobile, "pin": u.PIN, "balance": u.Balance,
		})
		fmt.Printf("user %-12s bank=%-6s uid=%v mmid=%v\n", u.Name, u.Bank, body["uid"], body["mmid"])
	}
}

func post(url string, payload map[string]interface{}) map[string]interface{} {
	data, err := json.Marshal(payload)
	if err != nil {
		fail(err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		fail(err)
	}
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

func fail(err error) {
	fmt.Fprintf(os.Stderr, "seed: %v\n", err)
	os.Exit(1)
}
