package linking

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"horizon/internal/domain/bankaccount"
	"horizon/internal/domain/user"
)

var (
	tracer           = otel.Tracer("horizon/linking")
	meter            = otel.Meter("horizon/linking")
	workflowTotal, _ = meter.Int64Counter("linking.workflow.total",
		metric.WithDescription("Account linking runs by outcome"),
	)
)

// Service issues link tokens and turns public tokens into funded bank
// account records.
type Service struct {
	aggregator Aggregator
	payments   Payments
	records    RecordWriter
	encryptor  Encryptor
	notifier   ChangeNotifier
}

func NewService(aggregator Aggregator, payments Payments, records RecordWriter, encryptor Encryptor, notifier ChangeNotifier) *Service {
	if notifier == nil {
		notifier = Notifiers(nil)
	}
	return &Service{
		aggregator: aggregator,
		payments:   payments,
		records:    records,
		encryptor:  encryptor,
		notifier:   notifier,
	}
}

// CreateLinkToken requests a link token scoped to the user for the "auth"
// product, in English, for US institutions.
func (s *Service) CreateLinkToken(ctx context.Context, u *user.User) (string, error) {
	if u == nil || u.ID == "" {
		return "", fail(KindInvalidIdentity, "create-link-token", ErrMissingIdentity)
	}

	ctx, span := tracer.Start(ctx, "linking.CreateLinkToken", trace.WithAttributes(attribute.String("user.id", u.ID)))
	defer span.End()

	token, err := s.aggregator.CreateLinkToken(ctx, LinkTokenRequest{
		ClientUserID: u.ID,
		ClientName:   u.FirstName + " " + u.LastName,
		Products:     linkProducts,
		Language:     linkLanguage,
		CountryCodes: linkCountryCodes,
	})
	if err == nil && token == "" {
		err = errors.New("empty link token")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "link token")
		log.Error().Err(err).Str("user_id", u.ID).Msg("link token creation failed")
		return "", fail(KindExternalServiceError, "create-link-token", err)
	}
	return token, nil
}

// ExchangePublicToken runs the linking workflow: exchange the public token,
// pick the item's first account, mint a processor token, register a funding
// source and persist the record. Each step needs the previous one's output
// so they run strictly in order. Either exactly one record with a live
// funding source is written, or none.
func (s *Service) ExchangePublicToken(ctx context.Context, publicToken string, u *user.User) (*ExchangeResult, error) {
	ctx, span := tracer.Start(ctx, "linking.ExchangePublicToken")
	defer span.End()

	result, err := s.exchange(ctx, publicToken, u)

	outcome := "success"
	if err != nil {
		outcome = string(KindOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	workflowTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	return result, err
}

func (s *Service) exchange(ctx context.Context, publicToken string, u *user.User) (*ExchangeResult, error) {
	const op = "exchange-public-token"

	switch {
	case u == nil || u.ID == "":
		return nil, fail(KindInvalidIdentity, op, ErrMissingIdentity)
	case u.PaymentsCustomerID == "":
		return nil, fail(KindInvalidIdentity, op, ErrMissingCustomer)
	case publicToken == "":
		return nil, fail(KindTokenExchangeFailed, op, ErrMissingPublicToken)
	}

	logger := log.With().Str("user_id", u.ID).Logger()
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("user.id", u.ID))

	exchanged, err := step(ctx, "exchange", func(ctx context.Context) (*TokenExchange, error) {
		ex, err := s.aggregator.ExchangePublicToken(ctx, publicToken)
		if err == nil && (ex == nil || ex.AccessToken == "" || ex.ItemID == "") {
			err = ErrIncompleteExchange
		}
		return ex, err
	})
	if err != nil {
		logger.Error().Err(err).Msg("public token exchange failed")
		return nil, fail(KindTokenExchangeFailed, op, err)
	}
	logger = logger.With().Str("item_id", exchanged.ItemID).Logger()

	account, err := step(ctx, "accounts", func(ctx context.Context) (*bankaccount.ExternalAccount, error) {
		accounts, err := s.aggregator.GetAccounts(ctx, exchanged.AccessToken)
		if err != nil {
			return nil, err
		}
		if len(accounts) == 0 {
			return nil, ErrNoAccounts
		}
		if len(accounts) > 1 {
			logger.Info().Int("accounts", len(accounts)).Msg("item has several accounts, linking the first")
		}
		return &accounts[0], nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("fetching item accounts failed")
		return nil, fail(KindExternalServiceError, op, fmt.Errorf("get accounts: %w", err))
	}
	logger = logger.With().Str("account_id", account.ID).Logger()

	processorToken, err := step(ctx, "processor_token", func(ctx context.Context) (string, error) {
		token, err := s.aggregator.CreateProcessorToken(ctx, exchanged.AccessToken, account.ID, ProcessorDwolla)
		if err == nil && token == "" {
			err = ErrEmptyProcessorToken
		}
		return token, err
	})
	if err != nil {
		logger.Error().Err(err).Msg("processor token creation failed")
		return nil, fail(KindProcessorTokenFailed, op, err)
	}

	fundingSourceURL, err := step(ctx, "funding_source", func(ctx context.Context) (string, error) {
		url, err := s.payments.AddFundingSource(ctx, FundingSourceRequest{
			CustomerID:     u.PaymentsCustomerID,
			ProcessorToken: processorToken,
			BankName:       account.Name,
		})
		if err == nil && url == "" {
			err = ErrEmptyFundingSource
		}
		return url, err
	})
	if err != nil {
		logger.Error().Err(err).Msg("funding source registration failed")
		return nil, fail(KindFundingSourceFailed, op, err)
	}

	_, err = step(ctx, "persist", func(ctx context.Context) (*bankaccount.Record, error) {
		sharableID, err := s.encryptor.Encrypt(account.ID)
		if err != nil {
			return nil, fmt.Errorf("derive sharable id: %w", err)
		}
		return s.records.Create(ctx, bankaccount.CreateParams{
			UserID:           u.ID,
			BankID:           exchanged.ItemID,
			AccountID:        account.ID,
			AccessToken:      exchanged.AccessToken,
			FundingSourceURL: fundingSourceURL,
			SharableID:       sharableID,
		})
	})
	if err != nil {
		logger.Error().Err(err).Str("funding_source_url", fundingSourceURL).
			Msg("bank account record not persisted, funding source left without a record")
		return nil, fail(KindPersistenceFailed, op, err)
	}

	if err := s.notifier.AccountsChanged(ctx, u.ID); err != nil {
		logger.Warn().Err(err).Msg("accounts changed notification failed")
	}

	logger.Info().Msg("bank account linked")
	return &ExchangeResult{PublicTokenExchange: ExchangeComplete}, nil
}

// step runs fn inside a child span named after the workflow step.
func step[T any](ctx context.Context, name string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := tracer.Start(ctx, "linking."+name)
	defer span.End()

	v, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, name)
	}
	return v, err
}
