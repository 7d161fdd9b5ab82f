package settlement

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upi/internal/directory"
	"upi/internal/domain"
	"upi/internal/registry"
	"upi/pkg/errors"
	"upi/pkg/logger"
)

type fixture struct {
	engine *Service
	reg    *registry.Service
}

func newFixture() *fixture {
	reg := registry.New()
	dir := directory.New(reg)
	return &fixture{
		engine: NewService(reg, dir, logger.NewNop()),
		reg:    reg,
	}
}

func (f *fixture) merchant(t *testing.T, bankName, name, branch string, balance int64) (mid, token string) {
	t.Helper()
	mid, err := f.engine.RegisterMerchant(&RegisterMerchantRequest{
		Bank: bankName, Name: name, Password: "pw", Branch: branch,
		Balance: decimal.NewFromInt(balance),
	})
	require.NoError(t, err)
	token, err = f.engine.ObfuscateMerchantID(mid)
	require.NoError(t, err)
	return mid, token
}

func (f *fixture) user(t *testing.T, bankName, name, branch, mobile, pin string, balance int64) (uid, mmid string) {
	t.Helper()
	uid, mmid, err := f.engine.RegisterUser(&RegisterUserRequest{
		Bank: bankName, Name: name, Password: "pw2", Branch: branch,
		Mobile: mobile, PIN: pin, Balance: decimal.NewFromInt(balance),
	})
	require.NoError(t, err)
	return uid, mmid
}

func (f *fixture) userBalance(t *testing.T, bankName, uid string) decimal.Decimal {
	t.Helper()
	b, err := f.reg.Get(bankName)
	require.NoError(t, err)
	balance, ok := b.UserBalance(uid)
	require.True(t, ok)
	return balance
}

func (f *fixture) merchantBalance(t *testing.T, bankName, mid string) decimal.Decimal {
	t.Helper()
	b, err := f.reg.Get(bankName)
	require.NoError(t, err)
	balance, ok := b.MerchantBalance(mid)
	require.True(t, ok)
	return balance
}

// The end-to-end scenario: genesis + one intra-bank entry, balances 1200/300.
func TestSameBankTransferScenario(t *testing.T) {
	f := newFixture()
	f.engine.RegisterBank("HDFC")

	mid, token := f.merchant(t, "HDFC", "Shop", "HDFC001", 1000)
	uid, mmid := f.user(t, "HDFC", "Alice", "HDFC001", "9998887777", "1234", 500)
	assert.Equal(t, uid[len(uid)-6:]+"7777", mmid)

	receipt, err := f.engine.TransferSameBank(&SameBankTransferRequest{
		Bank: "HDFC", Token: token, MMID: mmid, PIN: "1234",
		Amount: decimal.NewFromInt(200),
	})
	require.NoError(t, err)
	assert.Equal(t, mid, receipt.MerchantID)
	assert.Equal(t, domain.KindIntraBank, receipt.Kind)

	assert.True(t, f.merchantBalance(t, "HDFC", mid).Equal(decimal.NewFromInt(1200)))
	assert.True(t, f.userBalance(t, "HDFC", uid).Equal(decimal.NewFromInt(300)))

	entries, err := f.engine.GetLedger("HDFC")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.KindIntraBank, entries[1].Payload.Kind)
	assert.NoError(t, f.engine.VerifyLedger("HDFC"))
}

func TestSameBankTransferBankNotFound(t *testing.T) {
	f := newFixture()
	_, token := f.merchant(t, "HDFC", "Shop", "HDFC001", 1000)

	_, err := f.engine.TransferSameBank(&SameBankTransferRequest{
		Bank: "AXIS", Token: token, MMID: "123456" + "7777", PIN: "1234",
		Amount: decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, errors.ErrBankNotFound)
}

func TestSameBankTransferUnknownToken(t *testing.T) {
	f := newFixture()
	f.engine.RegisterBank("HDFC")
	mid, _ := f.merchant(t, "HDFC", "Shop", "HDFC001", 1000)
	uid, mmid := f.user(t, "HDFC", "Alice", "HDFC001", "9998887777", "1234", 500)

	_, err := f.engine.TransferSameBank(&SameBankTransferRequest{
		Bank: "HDFC", Token: "ffffffffffffffff", MMID: mmid, PIN: "1234",
		Amount: decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, errors.ErrUnknownMerchantToken)

	// No mutation on the failure path.
	assert.True(t, f.merchantBalance(t, "HDFC", mid).Equal(decimal.NewFromInt(1000)))
	assert.True(t, f.userBalance(t, "HDFC", uid).Equal(decimal.NewFromInt(500)))
	entries, err := f.engine.GetLedger("HDFC")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSameBankTransferInsufficientFunds(t *testing.T) {
	f := newFixture()
	mid, token := f.merchant(t, "HDFC", "Shop", "HDFC001", 1000)
	uid, mmid := f.user(t, "HDFC", "Alice", "HDFC001", "9998887777", "1234", 500)

	_, err := f.engine.TransferSameBank(&SameBankTransferRequest{
		Bank: "HDFC", Token: token, MMID: mmid, PIN: "1234",
		Amount: decimal.NewFromInt(501),
	})
	assert.ErrorIs(t, err, errors.ErrTransactionFailed)

	assert.True(t, f.merchantBalance(t, "HDFC", mid).Equal(decimal.NewFromInt(1000)))
	assert.True(t, f.userBalance(t, "HDFC", uid).Equal(decimal.NewFromInt(500)))
	entries, err := f.engine.GetLedger("HDFC")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSameBankTransferNonPositiveAmount(t *testing.T) {
	f := newFixture()
	_, token := f.merchant(t, "HDFC", "Shop", "HDFC001", 1000)
	_, mmid := f.user(t, "HDFC", "Alice", "HDFC001", "9998887777", "1234", 500)

	for _, amount := range []int64{0, -5} {
		_, err := f.engine.TransferSameBank(&SameBankTransferRequest{
			Bank: "HDFC", Token: token, MMID: mmid, PIN: "1234",
			Amount: decimal.NewFromInt(amount),
		})
		assert.ErrorIs(t, err, errors.ErrTransactionFailed)
	}
}

// A token that resolves to a merchant of another bank must fail the
// same-bank path before any mutation.
func TestSameBankTransferTokenFromOtherBank(t *testing.T) {
	f := newFixture()
	_, iciciToken := f.merchant(t, "ICICI", "Store", "ICICI001", 100)
	uid, mmid := f.user(t, "HDFC", "Alice", "HDFC001", "9998887777", "1234", 500)

	_, err := f.engine.TransferSameBank(&SameBankTransferRequest{
		Bank: "HDFC", Token: iciciToken, MMID: mmid, PIN: "1234",
		Amount: decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, errors.ErrTransactionFailed)
	assert.True(t, f.userBalance(t, "HDFC", uid).Equal(decimal.NewFromInt(500)))
}

func TestCrossBankTransfer(t *testing.T) {
	f := newFixture()
	mid, token := f.merchant(t, "ICICI", "Store", "ICICI002", 50)
	uid, mmid := f.user(t, "HDFC", "Bob", "HDFC002", "8887776666", "4321", 900)

	receipt, err := f.engine.TransferCrossBank(&CrossBankTransferRequest{
		SenderBank: "HDFC", MerchantBank: "ICICI", Token: token,
		MMID: mmid, PIN: "4321", Amount: decimal.NewFromInt(300),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.KindCrossBank, receipt.Kind)

	assert.True(t, f.userBalance(t, "HDFC", uid).Equal(decimal.NewFromInt(600)))
	assert.True(t, f.merchantBalance(t, "ICICI", mid).Equal(decimal.NewFromInt(350)))

	for _, bankName := range []string{"HDFC", "ICICI"} {
		entries, err := f.engine.GetLedger(bankName)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, domain.KindCrossBank, entries[1].Payload.Kind)
		assert.NoError(t, f.engine.VerifyLedger(bankName))
	}
}

func TestCrossBankTransferBankNotFound(t *testing.T) {
	f := newFixture()
	_, token := f.merchant(t, "ICICI", "Store", "ICICI002", 50)

	_, err := f.engine.TransferCrossBank(&CrossBankTransferRequest{
		SenderBank: "AXIS", MerchantBank: "ICICI", Token: token,
		MMID: "aaaaaa1111", PIN: "4321", Amount: decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, errors.ErrBankNotFound)

	_, err = f.engine.TransferCrossBank(&CrossBankTransferRequest{
		SenderBank: "ICICI", MerchantBank: "AXIS", Token: token,
		MMID: "aaaaaa1111", PIN: "4321", Amount: decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, errors.ErrBankNotFound)
}

// Token resolves into a bank other than the stated merchant bank: the
// transfer fails coarsely with no mutation anywhere.
func TestCrossBankTransferTokenBankMismatch(t *testing.T) {
	f := newFixture()
	_, hdfcToken := f.merchant(t, "HDFC", "Shop", "HDFC001", 1000)
	f.engine.RegisterBank("SBI")
	uid, mmid := f.user(t, "ICICI", "Bob", "ICICI001", "8887776666", "4321", 900)

	_, err := f.engine.TransferCrossBank(&CrossBankTransferRequest{
		SenderBank: "ICICI", MerchantBank: "SBI", Token: hdfcToken,
		MMID: mmid, PIN: "4321", Amount: decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, errors.ErrTransactionFailed)
	assert.True(t, f.userBalance(t, "ICICI", uid).Equal(decimal.NewFromInt(900)))
}

// Two concurrent transfers of 300 from a balance of 500: exactly one
// succeeds and the final balance is exactly 200.
func TestConcurrentTransfersNoDoubleSpend(t *testing.T) {
	f := newFixture()
	mid, token := f.merchant(t, "HDFC", "Shop", "HDFC001", 0)
	uid, mmid := f.user(t, "HDFC", "Alice", "HDFC001", "9998887777", "1234", 500)

	const attempts = 2
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.TransferSameBank(&SameBankTransferRequest{
				Bank: "HDFC", Token: token, MMID: mmid, PIN: "1234",
				Amount: decimal.NewFromInt(300),
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, failures int
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, errors.ErrTransactionFailed)
			failures++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, failures)

	assert.True(t, f.userBalance(t, "HDFC", uid).Equal(decimal.NewFromInt(200)))
	assert.True(t, f.merchantBalance(t, "HDFC", mid).Equal(decimal.NewFromInt(300)))

	entries, err := f.engine.GetLedger("HDFC")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

// Simultaneous transfers in opposite directions between the same two banks
// must not deadlock; name-ordered lock acquisition guarantees progress.
func TestOppositeDirectionCrossBankTransfers(t *testing.T) {
	f := newFixture()
	midA, tokenA := f.merchant(t, "HDFC", "ShopA", "HDFC001", 0)
	midB, tokenB := f.merchant(t, "ICICI", "ShopB", "ICICI001", 0)
	uidA, mmidA := f.user(t, "HDFC", "Alice", "HDFC001", "9998887777", "1111", 1000)
	uidB, mmidB := f.user(t, "ICICI", "Bob", "ICICI001", "8887776666", "2222", 1000)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.engine.TransferCrossBank(&CrossBankTransferRequest{
				SenderBank: "HDFC", MerchantBank: "ICICI", Token: tokenB,
				MMID: mmidA, PIN: "1111", Amount: decimal.NewFromInt(10),
			})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := f.engine.TransferCrossBank(&CrossBankTransferRequest{
				SenderBank: "ICICI", MerchantBank: "HDFC", Token: tokenA,
				MMID: mmidB, PIN: "2222", Amount: decimal.NewFromInt(10),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.True(t, f.userBalance(t, "HDFC", uidA).Equal(decimal.NewFromInt(800)))
	assert.True(t, f.userBalance(t, "ICICI", uidB).Equal(decimal.NewFromInt(800)))
	assert.True(t, f.merchantBalance(t, "HDFC", midA).Equal(decimal.NewFromInt(200)))
	assert.True(t, f.merchantBalance(t, "ICICI", midB).Equal(decimal.NewFromInt(200)))

	// 20 debits + 20 credits per bank ledger, plus genesis.
	for _, bankName := range []string{"HDFC", "ICICI"} {
		entries, err := f.engine.GetLedger(bankName)
		require.NoError(t, err)
		assert.Len(t, entries, 41)
		assert.NoError(t, f.engine.VerifyLedger(bankName))
	}
}

// Transfers are not idempotent: resubmitting a successful transfer debits
// again.
func TestTransferResubmissionDebitsAgain(t *testing.T) {
	f := newFixture()
	_, token := f.merchant(t, "HDFC", "Shop", "HDFC001", 0)
	uid, mmid := f.user(t, "HDFC", "Alice", "HDFC001", "9998887777", "1234", 500)

	req := &SameBankTransferRequest{
		Bank: "HDFC", Token: token, MMID: mmid, PIN: "1234",
		Amount: decimal.NewFromInt(200),
	}
	_, err := f.engine.TransferSameBank(req)
	require.NoError(t, err)
	_, err = f.engine.TransferSameBank(req)
	require.NoError(t, err)

	assert.True(t, f.userBalance(t, "HDFC", uid).Equal(decimal.NewFromInt(100)))
}

func TestGetLedgerUnknownBank(t *testing.T) {
	f := newFixture()
	_, err := f.engine.GetLedger("AXIS")
	assert.ErrorIs(t, err, errors.ErrBankNotFound)
	assert.ErrorIs(t, f.engine.VerifyLedger("AXIS"), errors.ErrBankNotFound)
}

func TestListMerchantsAndUsersOmitEmptyBanks(t *testing.T) {
	f := newFixture()
	f.engine.RegisterBank("SBI")
	mid, _ := f.merchant(t, "HDFC", "Shop", "HDFC001", 1000)
	uid, _ := f.user(t, "ICICI", "Bob", "ICICI001", "8887776666", "4321", 900)

	merchants := f.engine.ListMerchants()
	require.Contains(t, merchants, "HDFC")
	assert.NotContains(t, merchants, "SBI")
	assert.NotContains(t, merchants, "ICICI")
	assert.Equal(t, "Shop", merchants["HDFC"][mid].Name)

	users := f.engine.ListUsers()
	require.Contains(t, users, "ICICI")
	assert.NotContains(t, users, "SBI")
	assert.Equal(t, "Bob", users["ICICI"][uid].Name)
}

func TestRegisterBankReturnsBranches(t *testing.T) {
	f := newFixture()
	branches := f.engine.RegisterBank("HDFC")
	assert.Equal(t, []string{"HDFC001", "HDFC002", "HDFC003"}, branches)
}
