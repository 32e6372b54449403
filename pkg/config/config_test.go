package config

import (
	"testing"

	"github.com/lilwiggy/orderbook-aggregator/pkg/domain"
)

func TestBuilderDefaults(t *testing.T) {
	cfg := NewBuilder().MustBuild()

	if cfg.Symbol != DefaultSymbol {
		t.Fatalf("Symbol = %q, want %q", cfg.Symbol, DefaultSymbol)
	}
	if cfg.Port != DefaultPort {
		t.Fatalf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.Disabled.Bitstamp || cfg.Disabled.Binance || cfg.Disabled.Kraken || cfg.Disabled.Coinbase {
		t.Fatal("no venue should be disabled by default")
	}
}

func TestBuilderDisableVenue(t *testing.T) {
	cfg := NewBuilder().Disable(domain.VenueKraken).MustBuild()

	if !cfg.Disabled.Kraken {
		t.Fatal("kraken should be disabled")
	}
	if cfg.Disabled.Enabled(domain.VenueKraken) {
		t.Fatal("Enabled(kraken) should be false")
	}
	if !cfg.Disabled.Enabled(domain.VenueBinance) {
		t.Fatal("Enabled(binance) should remain true")
	}
}

func TestBuilderRejectsBadPort(t *testing.T) {
	_, err := NewBuilder().Port(-1).Build()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestConfigAddr(t *testing.T) {
	cfg := NewBuilder().Port(50051).MustBuild()
	if cfg.Addr() != ":50051" {
		t.Fatalf("Addr() = %q, want %q", cfg.Addr(), ":50051")
	}
}
