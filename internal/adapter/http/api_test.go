package http

import (
	"bytes"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"stokvel-backend/internal/adapter/middleware"
	"stokvel-backend/internal/testutil/ledgertest"
	"stokvel-backend/internal/usecase/admission"
	"stokvel-backend/internal/usecase/autofund"
	"stokvel-backend/internal/usecase/defaults"
	"stokvel-backend/internal/usecase/identity"
	"stokvel-backend/internal/usecase/lending"
	"stokvel-backend/internal/usecase/repayment"
	"stokvel-backend/internal/usecase/savings"

	"github.com/labstack/echo/v4"
)

var (
	alice = ledgertest.Addr(1)
	bob   = ledgertest.Addr(2)
)

type api struct {
	t   *testing.T
	e   *echo.Echo
	env *ledgertest.Env
}

// newAPI serves every route over a fresh in-memory ledger, displaying
// amounts with 2 decimals.
func newAPI(t *testing.T, autoFundOnRequest bool) *api {
	t.Helper()
	env := ledgertest.New(t)
	lend := lending.NewUsecase(env.Runner)

	e := echo.New()
	e.Validator = NewValidator(2)
	Register(e, Deps{
		Admission:         admission.NewUsecase(env.Runner),
		Savings:           savings.NewUsecase(env.Runner),
		Lending:           lend,
		Repayment:         repayment.NewUsecase(env.Runner),
		Defaults:          defaults.NewUsecase(env.Runner),
		AutoFund:          autofund.NewUsecase(env.Runner, lend),
		Identity:          identity.NewUsecase(env.UoW),
		Events:            env.Runner,
		Presenter:         NewPresenter(2),
		AutoFundOnRequest: autoFundOnRequest,
	})

	prev := nowUTC
	nowUTC = func() time.Time { return ledgertest.T0 }
	t.Cleanup(func() { nowUTC = prev })

	return &api{t: t, e: e, env: env}
}

func (a *api) do(method, path, who string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if who != "" {
		req.Header.Set(middleware.MemberHeader, who)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("bad json: %v; raw=%s", err, rec.Body.String())
	}
	return v
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("status = %d, want %d; body=%s", rec.Code, code, rec.Body.String())
	}
}

func TestClubFlow(t *testing.T) {
	a := newAPI(t, false)

	rec := a.do(stdhttp.MethodPost, "/club/bootstrap", alice, map[string]string{
		"hashed_id": ledgertest.Hash(alice),
		"payment":   "1.50",
	})
	wantStatus(t, rec, stdhttp.StatusCreated)
	acc := decodeBody[accountResp](t, rec)
	if acc.TotalSavings != "1.50" || acc.AvailableSavings != "0.50" || !acc.IsActive {
		t.Fatalf("bootstrap account = %+v", acc)
	}

	rec = a.do(stdhttp.MethodPost, "/club/bootstrap", bob, map[string]string{
		"hashed_id": ledgertest.Hash(bob),
		"payment":   "1.00",
	})
	wantStatus(t, rec, stdhttp.StatusConflict)
	if er := decodeBody[ErrorResponse](t, rec); er.Code != "CLUB_ALREADY_INITIALISED" {
		t.Fatalf("error = %+v", er)
	}

	rec = a.do(stdhttp.MethodPost, "/applicants", bob, map[string]string{"hashed_id": ledgertest.Hash(bob)})
	wantStatus(t, rec, stdhttp.StatusCreated)

	rec = a.do(stdhttp.MethodPost, "/applicants/"+bob+"/votes", alice, map[string]bool{"approve": true})
	wantStatus(t, rec, stdhttp.StatusOK)
	st := decodeBody[admission.StatusDTO](t, rec)
	if !st.DecisionMade || !st.CreatorVoted {
		t.Fatalf("status = %+v", st)
	}

	rec = a.do(stdhttp.MethodGet, "/applicants/"+bob+"?voter="+alice, "", nil)
	wantStatus(t, rec, stdhttp.StatusOK)
	st = decodeBody[admission.StatusDTO](t, rec)
	if st.VoterHasVoted == nil || !*st.VoterHasVoted {
		t.Fatalf("voter_has_voted = %v", st.VoterHasVoted)
	}

	rec = a.do(stdhttp.MethodPost, "/members/activate", bob, map[string]string{"payment": "1.00"})
	wantStatus(t, rec, stdhttp.StatusOK)

	rec = a.do(stdhttp.MethodGet, "/club", "", nil)
	wantStatus(t, rec, stdhttp.StatusOK)
	club := decodeBody[clubResp](t, rec)
	if club.Creator != alice || club.TotalMembers != 2 || club.TreasuryBalance != "2.50" || club.JoiningFee != "1.00" {
		t.Fatalf("club = %+v", club)
	}

	rec = a.do(stdhttp.MethodGet, "/identities/"+ledgertest.Hash(bob), "", nil)
	wantStatus(t, rec, stdhttp.StatusOK)
	if id := decodeBody[identity.ResolveDTO](t, rec); !id.Bound || id.Address != bob {
		t.Fatalf("identity = %+v", id)
	}
}

func TestSavingsRoutes(t *testing.T) {
	a := newAPI(t, false)
	a.env.Seed(t, alice, 100)

	rec := a.do(stdhttp.MethodPost, "/members/deposit", alice, map[string]string{"amount": "20"})
	wantStatus(t, rec, stdhttp.StatusOK)
	if acc := decodeBody[accountResp](t, rec); acc.TotalSavings != "21.00" || acc.AvailableSavings != "20.00" {
		t.Fatalf("after deposit = %+v", acc)
	}

	rec = a.do(stdhttp.MethodPost, "/members/withdraw", alice, map[string]string{"amount": "999.00"})
	wantStatus(t, rec, stdhttp.StatusUnprocessableEntity)
	if er := decodeBody[ErrorResponse](t, rec); er.Code != "INSUFFICIENT_FUNDS" {
		t.Fatalf("error = %+v", er)
	}

	rec = a.do(stdhttp.MethodPost, "/members/withdraw", alice, map[string]string{"amount": "5.25"})
	wantStatus(t, rec, stdhttp.StatusOK)
	if a.env.Gateway.Total(alice) != 525 {
		t.Fatalf("paid out %d", a.env.Gateway.Total(alice))
	}

	rec = a.do(stdhttp.MethodGet, "/members/"+alice, "", nil)
	wantStatus(t, rec, stdhttp.StatusOK)
	if acc := decodeBody[accountResp](t, rec); acc.TotalSavings != "15.75" {
		t.Fatalf("account = %+v", acc)
	}

	rec = a.do(stdhttp.MethodGet, "/members/"+bob, "", nil)
	wantStatus(t, rec, stdhttp.StatusNotFound)
}

func TestRequestValidation(t *testing.T) {
	a := newAPI(t, false)
	a.env.Seed(t, alice, 100)

	tests := []struct {
		name string
		who  string
		body any
		want int
	}{
		{"missing caller", "", map[string]string{"amount": "1"}, stdhttp.StatusUnauthorized},
		{"bad caller", "0x1234", map[string]string{"amount": "1"}, stdhttp.StatusBadRequest},
		{"too precise", alice, map[string]string{"amount": "1.001"}, stdhttp.StatusUnprocessableEntity},
		{"negative", alice, map[string]string{"amount": "-1"}, stdhttp.StatusUnprocessableEntity},
		{"missing amount", alice, map[string]string{}, stdhttp.StatusUnprocessableEntity},
		{"zero reaches ledger", alice, map[string]string{"amount": "0"}, stdhttp.StatusUnprocessableEntity},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := a.do(stdhttp.MethodPost, "/members/deposit", tc.who, tc.body)
			wantStatus(t, rec, tc.want)
		})
	}

	rec := a.do(stdhttp.MethodPost, "/members/deposit", alice, map[string]string{"amount": "0"})
	if er := decodeBody[ErrorResponse](t, rec); er.Code != "ZERO_AMOUNT" {
		t.Fatalf("error = %+v", er)
	}
}

func TestLoanRoutes(t *testing.T) {
	a := newAPI(t, false)
	a.env.Seed(t, alice, 1000)
	a.env.Seed(t, bob, 2000)

	rec := a.do(stdhttp.MethodPost, "/loans", alice, map[string]string{"amount": "10.00"})
	wantStatus(t, rec, stdhttp.StatusCreated)
	req := decodeBody[requestLoanResp](t, rec)
	if req.Loan.CollateralLocked != "2.00" || len(req.Loan.Installments) != 12 || req.AutoFund != nil {
		t.Fatalf("requested = %+v", req)
	}
	base := "/loans/1"

	rec = a.do(stdhttp.MethodGet, "/loans/open", "", nil)
	wantStatus(t, rec, stdhttp.StatusOK)
	if open := decodeBody[[]loanResp](t, rec); len(open) != 1 {
		t.Fatalf("open = %+v", open)
	}

	rec = a.do(stdhttp.MethodPost, base+"/fund", alice, map[string]string{"amount": "1"})
	wantStatus(t, rec, stdhttp.StatusForbidden)

	rec = a.do(stdhttp.MethodPost, base+"/fund", bob, map[string]string{"amount": "50"})
	wantStatus(t, rec, stdhttp.StatusOK)
	fund := decodeBody[fundResp](t, rec)
	if fund.Funded != "10.00" || !fund.Disbursed || fund.Loan.State != "active" {
		t.Fatalf("fund = %+v", fund)
	}

	rec = a.do(stdhttp.MethodGet, base+"/quote", "", nil)
	wantStatus(t, rec, stdhttp.StatusOK)
	q := decodeBody[quoteResp](t, rec)
	if q.Index != 0 || q.AmountDue != "1.08" || q.LateFee != "0.00" {
		t.Fatalf("quote = %+v", q)
	}

	rec = a.do(stdhttp.MethodPost, base+"/payments", alice, map[string]string{"payment": "1.07"})
	wantStatus(t, rec, stdhttp.StatusUnprocessableEntity)

	rec = a.do(stdhttp.MethodPost, base+"/payments", alice, map[string]string{"payment": q.Total})
	wantStatus(t, rec, stdhttp.StatusOK)
	pay := decodeBody[paymentResp](t, rec)
	if pay.Principal != "0.83" || pay.Interest != "0.25" || len(pay.Shares) != 1 {
		t.Fatalf("payment = %+v", pay)
	}

	rec = a.do(stdhttp.MethodPost, base+"/default-check", bob, nil)
	wantStatus(t, rec, stdhttp.StatusConflict)
	if er := decodeBody[ErrorResponse](t, rec); er.Code != "NO_DEFAULT_DETECTED" {
		t.Fatalf("error = %+v", er)
	}

	rec = a.do(stdhttp.MethodGet, "/members/"+alice+"/loans", "", nil)
	wantStatus(t, rec, stdhttp.StatusOK)
	if mine := decodeBody[[]loanResp](t, rec); len(mine) != 1 || mine[0].LoanID != 1 {
		t.Fatalf("loans by borrower = %+v", mine)
	}

	rec = a.do(stdhttp.MethodGet, "/loans/overdue", "", nil)
	wantStatus(t, rec, stdhttp.StatusOK)

	rec = a.do(stdhttp.MethodGet, "/loans/999", "", nil)
	wantStatus(t, rec, stdhttp.StatusNotFound)
	rec = a.do(stdhttp.MethodGet, "/loans/abc", "", nil)
	wantStatus(t, rec, stdhttp.StatusBadRequest)
}

func TestAutoFundOnRequest(t *testing.T) {
	a := newAPI(t, true)
	a.env.Seed(t, alice, 1000)
	a.env.Seed(t, bob, 2000)

	rec := a.do(stdhttp.MethodPut, "/autofund-rules", bob, map[string]any{
		"max_fund_amount":     "10.00",
		"min_savings_balance": "1.00",
		"is_active":           true,
	})
	wantStatus(t, rec, stdhttp.StatusOK)

	rec = a.do(stdhttp.MethodGet, "/autofund-rules/"+bob, "", nil)
	wantStatus(t, rec, stdhttp.StatusOK)
	if r := decodeBody[ruleResp](t, rec); r.MaxFundAmount != "10.00" || !r.IsActive {
		t.Fatalf("rule = %+v", r)
	}
	rec = a.do(stdhttp.MethodGet, "/autofund-rules/"+alice, "", nil)
	wantStatus(t, rec, stdhttp.StatusNotFound)

	rec = a.do(stdhttp.MethodPost, "/loans", alice, map[string]string{"amount": "10.00"})
	wantStatus(t, rec, stdhttp.StatusCreated)
	req := decodeBody[requestLoanResp](t, rec)
	if len(req.AutoFund) != 1 || req.AutoFund[0].Funded != "10.00" {
		t.Fatalf("autofund = %+v", req.AutoFund)
	}
	if req.Loan.State != "active" || req.Loan.AmountFunded != "10.00" {
		t.Fatalf("loan = %+v", req.Loan)
	}
}

func TestEventsRoute(t *testing.T) {
	a := newAPI(t, false)
	a.env.Seed(t, alice, 100)
	for i := 0; i < 3; i++ {
		wantStatus(t, a.do(stdhttp.MethodPost, "/members/deposit", alice, map[string]string{"amount": "1"}), stdhttp.StatusOK)
	}

	rec := a.do(stdhttp.MethodGet, "/events?limit=2", "", nil)
	wantStatus(t, rec, stdhttp.StatusOK)
	page := decodeBody[eventsResp](t, rec)
	if len(page.Events) != 2 || page.Next != page.Events[1].Seq {
		t.Fatalf("page 1 = %+v", page)
	}

	rec = a.do(stdhttp.MethodGet, "/events?after="+strconv.FormatUint(page.Next, 10), "", nil)
	wantStatus(t, rec, stdhttp.StatusOK)
	if rest := decodeBody[eventsResp](t, rec); len(rest.Events) != 1 || rest.Events[0].Seq <= page.Next {
		t.Fatalf("page 2 = %+v", rest)
	}

	wantStatus(t, a.do(stdhttp.MethodGet, "/events?after=x", "", nil), stdhttp.StatusBadRequest)
	wantStatus(t, a.do(stdhttp.MethodGet, "/events?limit=0", "", nil), stdhttp.StatusBadRequest)
}
