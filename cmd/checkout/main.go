// Command checkout places an order through the order API by driving the
// checkout state machine, the same way a storefront would.
//
//	go run ./cmd/checkout -restaurant <id> -items margherita,margherita,tiramisu \
//	    -name "Anna Schmidt" -phone "+49 30 1234567" -type delivery \
//	    -street Torstraße -house 12 -postal 10115 -city Berlin -pay card
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"orderdesk/internal/cache"
	"orderdesk/internal/checkout"
	"orderdesk/internal/config"
	"orderdesk/internal/model"
	"orderdesk/internal/payment"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const simulatedPaymentLatency = 300 * time.Millisecond

type options struct {
	restaurantID uuid.UUID
	itemIDs      []string
	orderType    model.OrderType
	contact      model.Contact
	address      model.Address
	zoneID       *uuid.UUID
	discountCode string
	payment      model.PaymentMethod
	slot         int
	customerKey  string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs(args []string) (*options, error) {
	set := flag.NewFlagSet("checkout", flag.ContinueOnError)
	restaurant := set.String("restaurant", "", "restaurant ID")
	items := set.String("items", "", "comma separated menu item IDs; repeat an ID to order it more than once")
	orderType := set.String("type", string(model.OrderTypePickup), "pickup or delivery")
	name := set.String("name", "", "customer name")
	phone := set.String("phone", "", "customer phone number")
	email := set.String("email", "", "customer email")
	street := set.String("street", "", "delivery street")
	house := set.String("house", "", "delivery house number")
	postal := set.String("postal", "", "delivery postal code")
	city := set.String("city", "", "delivery city")
	notes := set.String("notes", "", "delivery notes")
	zoneFlag := set.String("zone", "", "zone ID when the postal code is served by several zones")
	discountCode := set.String("discount", "", "discount code")
	pay := set.String("pay", string(model.PaymentCash), "cash or card")
	slot := set.Int("slot", 0, "index of the offered time slot, 0 is the earliest")
	customer := set.String("customer", "", "key for remembered details (defaults to the phone number)")

	if err := set.Parse(args); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(*restaurant)
	if err != nil {
		return nil, fmt.Errorf("invalid restaurant ID %q", *restaurant)
	}

	opts := &options{
		restaurantID: id,
		orderType:    model.OrderType(*orderType),
		contact:      model.Contact{Name: *name, Phone: *phone, Email: *email},
		address:      model.Address{Street: *street, HouseNumber: *house, PostalCode: *postal, City: *city, Notes: *notes},
		discountCode: *discountCode,
		payment:      model.PaymentMethod(*pay),
		slot:         *slot,
		customerKey:  strings.TrimSpace(*customer),
	}
	for _, item := range strings.Split(*items, ",") {
		if item = strings.TrimSpace(item); item != "" {
			opts.itemIDs = append(opts.itemIDs, item)
		}
	}
	if len(opts.itemIDs) == 0 {
		return nil, errors.New("at least one menu item is required")
	}
	if !opts.orderType.Valid() {
		return nil, fmt.Errorf("invalid order type %q", *orderType)
	}
	if !opts.payment.Valid() {
		return nil, fmt.Errorf("invalid payment method %q", *pay)
	}
	if opts.slot < 0 {
		return nil, errors.New("slot index cannot be negative")
	}
	if *zoneFlag != "" {
		zoneID, err := uuid.Parse(*zoneFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid zone ID %q", *zoneFlag)
		}
		opts.zoneID = &zoneID
	}
	if opts.customerKey == "" {
		opts.customerKey = strings.Join(strings.Fields(opts.contact.Phone), "")
	}

	return opts, nil
}

func run(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := checkout.NewHTTPBackend(cfg.Checkout.APIURL, cfg.Auth.APIKey, nil, logger)

	restaurant, err := backend.FetchRestaurant(ctx, opts.restaurantID)
	if err != nil {
		return fmt.Errorf("failed to load restaurant: %w", err)
	}
	menu, err := backend.FetchMenu(ctx, opts.restaurantID)
	if err != nil {
		return fmt.Errorf("failed to load menu: %w", err)
	}
	cart, upsell, err := buildCart(menu, opts.itemIDs)
	if err != nil {
		return err
	}

	deps := checkout.Dependencies{
		Backend:  backend,
		Payments: newConfirmer(cfg.Checkout, logger),
		Cart:     cart,
	}
	if cfg.Redis.Enabled && opts.customerKey != "" {
		client, err := cache.NewClient(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, customer details will not be remembered")
		} else {
			defer client.Close()
			deps.Prefill = cache.NewPrefillStore(client, opts.customerKey, cfg.Checkout.PrefillTTL(), logger)
		}
	}

	m := checkout.NewMachine(checkout.Config{
		Restaurant:  *restaurant,
		UpsellItems: upsell,
		Currency:    cfg.Checkout.Currency,
		Slots:       cfg.Checkout.SlotConfig(),
	}, deps, logger)
	m.Subscribe(func(s checkout.State) {
		logger.Debug().Str("state", string(s)).Msg("checkout step")
	})

	if err := m.Open(ctx); err != nil {
		return fmt.Errorf("failed to open checkout: %w", err)
	}
	defer m.Close()

	res, err := complete(ctx, m, opts, logger)
	if err != nil {
		return err
	}

	if res.OrderNumber != nil {
		fmt.Printf("Order #%d placed at %s (%s)\n", *res.OrderNumber, restaurant.Name, res.OrderID)
	} else {
		fmt.Printf("Order placed at %s (%s)\n", restaurant.Name, res.OrderID)
	}
	return nil
}

// complete fills in the draft from opts and advances to Success.
func complete(ctx context.Context, m *checkout.Machine, opts *options, logger zerolog.Logger) (*model.OrderResult, error) {
	if m.State() == checkout.StateUpsell {
		if err := m.Advance(ctx); err != nil {
			return nil, err
		}
	}

	draft, _ := m.Draft()
	if err := m.SetContact(mergeContact(draft.Contact, opts.contact)); err != nil {
		return nil, err
	}
	if err := m.SetPaymentMethod(opts.payment); err != nil {
		return nil, err
	}

	if opts.orderType == model.OrderTypeDelivery {
		if err := m.SetOrderType(ctx, opts.orderType); err != nil {
			return nil, fmt.Errorf("failed to load delivery times: %w", err)
		}
		if err := m.SetAddress(ctx, mergeAddress(draft.Address, opts.address)); err != nil {
			return nil, fmt.Errorf("failed to resolve delivery zone: %w", err)
		}
		if opts.zoneID != nil {
			if err := m.SelectZone(ctx, *opts.zoneID); err != nil {
				return nil, err
			}
		}
	}

	if opts.discountCode != "" {
		if err := m.ApplyDiscount(ctx, opts.discountCode); err != nil {
			return nil, fmt.Errorf("discount not applied: %w", err)
		}
	}

	draft, _ = m.Draft()
	if opts.slot >= len(draft.Slots) {
		return nil, fmt.Errorf("slot %d not offered, %d slots available", opts.slot, len(draft.Slots))
	}
	if err := m.SetFulfillmentTime(draft.Slots[opts.slot].At); err != nil {
		return nil, err
	}

	if blockers := m.Blockers(); len(blockers) > 0 {
		return nil, errors.Join(blockers...)
	}

	q := m.Quote()
	logger.Info().
		Str("subtotal", q.Subtotal.StringFixed(2)).
		Str("discount", q.DiscountAmount.StringFixed(2)).
		Str("delivery_fee", q.DeliveryFee.StringFixed(2)).
		Str("total", q.Total.StringFixed(2)).
		Str("slot", draft.Slots[opts.slot].Label).
		Msg("placing order")

	for m.State() != checkout.StateSuccess {
		if err := m.Advance(ctx); err != nil {
			return nil, err
		}
	}
	return m.Result(), nil
}

// buildCart turns menu item IDs into cart lines, one line per distinct item.
// Upsell items not already in the cart are returned for the upsell step.
func buildCart(menu []model.MenuItem, itemIDs []string) (*checkout.Cart, []model.MenuItem, error) {
	byID := make(map[string]*model.MenuItem, len(menu))
	for i := range menu {
		byID[menu[i].ID] = &menu[i]
	}

	var lines []model.CartItem
	index := make(map[string]int)
	for _, id := range itemIDs {
		if i, ok := index[id]; ok {
			lines[i].Quantity++
			continue
		}
		item, ok := byID[id]
		if !ok {
			return nil, nil, model.NewDomainError(model.ErrCodeMenuItemNotFound, fmt.Sprintf("Menu item %q not found", id))
		}
		price, err := item.UnitPrice(nil, nil)
		if err != nil {
			return nil, nil, err
		}
		index[id] = len(lines)
		lines = append(lines, model.CartItem{MenuItemID: item.ID, Name: item.Name, Quantity: 1, UnitPrice: price})
	}

	var upsell []model.MenuItem
	for _, item := range menu {
		if _, inCart := index[item.ID]; item.Upsell && !inCart {
			upsell = append(upsell, item)
		}
	}
	return checkout.NewCart(lines...), upsell, nil
}

// newConfirmer builds the simulated card provider bounded by the configured timeout.
func newConfirmer(cfg config.CheckoutConfig, logger zerolog.Logger) payment.Confirmer {
	return payment.WithTimeout(payment.NewSimulated(payment.SimulatedConfig{
		Latency: simulatedPaymentLatency,
		Limit:   cfg.PaymentLimit(),
	}, logger), cfg.PaymentTimeoutDuration())
}

func mergeContact(saved, given model.Contact) model.Contact {
	if given.Name != "" {
		saved.Name = given.Name
	}
	if given.Phone != "" {
		saved.Phone = given.Phone
	}
	if given.Email != "" {
		saved.Email = given.Email
	}
	return saved
}

func mergeAddress(saved, given model.Address) model.Address {
	if given.Street != "" {
		saved.Street = given.Street
	}
	if given.HouseNumber != "" {
		saved.HouseNumber = given.HouseNumber
	}
	if given.PostalCode != "" {
		saved.PostalCode = given.PostalCode
	}
	if given.City != "" {
		saved.City = given.City
	}
	if given.Notes != "" {
		saved.Notes = given.Notes
	}
	return saved
}
