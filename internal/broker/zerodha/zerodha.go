package zerodha

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
	kiteticker "github.com/zerodha/gokiteconnect/v4/ticker"

	"smartob-trader/internal/interfaces"
	"smartob-trader/internal/logger"
	"smartob-trader/internal/types"
)

// quoteMaxAge bounds how stale a streamed quote may be before Quote goes to REST.
const quoteMaxAge = 10 * time.Second

type Params struct {
	Mode        string
	APIKey      string
	AccessToken string
	Exchange    string
	Product     string
	MaxVolume   float64
	Magic       int
}

// Zerodha is a Kite Connect broker. Bars and equity come from the REST API;
// quotes come from the WebSocket ticker with REST as fallback. In DRY_RUN
// mode orders are logged and accepted without being sent.
type Zerodha struct {
	p      Params
	kc     *kiteconnect.Client
	ticker *kiteticker.Ticker
	mapper *instrumentMapper
	quotes *quoteCache
}

var _ interfaces.Broker = (*Zerodha)(nil)

func NewZerodha(p Params) *Zerodha {
	if p.Exchange == "" {
		p.Exchange = kiteconnect.ExchangeNSE
	}
	if p.Product == "" {
		p.Product = kiteconnect.ProductMIS
	}
	return &Zerodha{
		p:      p,
		mapper: newInstrumentMapper(),
		quotes: newQuoteCache(quoteMaxAge),
	}
}

// Start resolves instrument tokens for symbols and opens the ticker.
func (z *Zerodha) Start(ctx context.Context, symbols []string) error {
	if z.p.APIKey == "" || z.p.AccessToken == "" {
		return errors.New("missing API key/access token")
	}
	z.kc = kiteconnect.New(z.p.APIKey)
	z.kc.SetAccessToken(z.p.AccessToken)

	insts, err := z.kc.GetInstrumentsByExchange(z.p.Exchange)
	if err != nil {
		return venueErr("instruments "+z.p.Exchange, err)
	}
	want := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		want[s] = true
	}
	for _, inst := range insts {
		if !want[inst.Tradingsymbol] {
			continue
		}
		z.mapper.add(inst.Tradingsymbol, instrument{
			Token:    uint32(inst.InstrumentToken),
			TickSize: float64(inst.TickSize),
			LotSize:  float64(inst.LotSize),
		})
	}
	var missing []string
	for _, s := range symbols {
		if _, ok := z.mapper.get(s); !ok {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("symbols not listed on %s: %s", z.p.Exchange, strings.Join(missing, ","))
	}

	z.ticker = kiteticker.New(z.p.APIKey, z.p.AccessToken)
	z.setupEventHandlers()
	go func() {
		logger.Info(ctx, "Starting Zerodha WebSocket ticker")
		z.ticker.Serve()
	}()
	return nil
}

// errNotStarted is returned by calls made before Start succeeded.
var errNotStarted = fmt.Errorf("kite client not started: %w", types.ErrExternalService)

// venueErr tags a Kite failure as an external service error.
func venueErr(op string, err error) error {
	return fmt.Errorf("kite %s: %w: %w", op, types.ErrExternalService, err)
}

func (z *Zerodha) Stop(ctx context.Context) {
	if z.ticker != nil {
		logger.Info(ctx, "Stopping Zerodha WebSocket ticker")
		z.ticker.Stop()
	}
}

func (z *Zerodha) Equity(ctx context.Context) (float64, error) {
	if z.kc == nil {
		return 0, errNotStarted
	}
	m, err := z.kc.GetUserMargins()
	if err != nil {
		return 0, venueErr("margins", err)
	}
	return m.Equity.Net, nil
}

// OpenPosition places a market order followed by a stop-loss-market order on
// the opposite side. Kite order and input exceptions count as a decline.
func (z *Zerodha) OpenPosition(ctx context.Context, intent types.TradeIntent) (bool, error) {
	qty := int(math.Round(intent.LotSize))
	if qty <= 0 {
		return false, nil
	}
	if z.p.Mode == "DRY_RUN" {
		logger.Info(ctx, "Dry run, order not sent",
			"symbol", intent.Symbol,
			"side", intent.Direction.Side(),
			"qty", qty,
			"stop_loss", intent.StopLoss,
		)
		return true, nil
	}
	if z.kc == nil {
		return false, errNotStarted
	}

	side, exit := kiteconnect.TransactionTypeBuy, kiteconnect.TransactionTypeSell
	if intent.Direction == types.DirectionShort {
		side, exit = exit, side
	}
	tag := orderTag(z.p.Magic)

	resp, err := z.kc.PlaceOrder(kiteconnect.VarietyRegular, kiteconnect.OrderParams{
		Exchange:        z.p.Exchange,
		Tradingsymbol:   intent.Symbol,
		Validity:        kiteconnect.ValidityDay,
		Product:         z.p.Product,
		OrderType:       kiteconnect.OrderTypeMarket,
		TransactionType: side,
		Quantity:        qty,
		Tag:             tag,
	})
	if err != nil {
		if isDecline(err) {
			logger.Warn(ctx, "Order declined by Kite", "symbol", intent.Symbol, "error", err.Error())
			return false, nil
		}
		return false, err
	}
	logger.Info(ctx, "Order placed", "symbol", intent.Symbol, "order_id", resp.OrderID, "qty", qty)

	slResp, err := z.kc.PlaceOrder(kiteconnect.VarietyRegular, kiteconnect.OrderParams{
		Exchange:        z.p.Exchange,
		Tradingsymbol:   intent.Symbol,
		Validity:        kiteconnect.ValidityDay,
		Product:         z.p.Product,
		OrderType:       kiteconnect.OrderTypeSLM,
		TransactionType: exit,
		Quantity:        qty,
		TriggerPrice:    intent.StopLoss,
		Tag:             tag,
	})
	if err != nil {
		// The entry is filled; an unprotected position is reported but still counted.
		logger.ErrorWithErr(ctx, "Failed to place stop-loss order", err,
			"symbol", intent.Symbol,
			"entry_order_id", resp.OrderID,
			"trigger", intent.StopLoss,
		)
		return true, nil
	}
	logger.Info(ctx, "Stop-loss placed", "symbol", intent.Symbol, "order_id", slResp.OrderID, "trigger", intent.StopLoss)
	return true, nil
}

// orderTag fits the magic number into Kite's 20 character tag.
func orderTag(magic int) string {
	return fmt.Sprintf("smartob-%d", magic)
}

func isDecline(err error) bool {
	var kerr kiteconnect.Error
	if !errors.As(err, &kerr) {
		return false
	}
	return kerr.ErrorType == kiteconnect.OrderError || kerr.ErrorType == kiteconnect.InputError
}
