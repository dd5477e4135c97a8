package market

import (
	"testing"
)

func TestCategoryString(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		want     string
	}{
		{
			"crypto category",
			Crypto,
			"crypto",
		},
		{
			"forex category",
			Forex,
			"forex",
		},
		{
			"cfd category",
			CFD,
			"cfd",
		},
		{
			"unknown category",
			Category(999),
			"unknown",
		},
	}

	for _, test := range tests {
		str := test.category.String()
		if str != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, str)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		instrument string
		want       Category
	}{
		{
			"btc pair",
			"BTCUSD",
			Crypto,
		},
		{
			"lowercase eth pair",
			"ethusdt",
			Crypto,
		},
		{
			"dow jones cfd",
			"US30",
			CFD,
		},
		{
			"nasdaq cfd",
			"NAS100",
			CFD,
		},
		{
			"oil cfd",
			"USOIL",
			CFD,
		},
		{
			"currency pair",
			"EURUSD",
			Forex,
		},
		{
			"lowercase currency pair",
			"gbpjpy",
			Forex,
		},
		{
			"gold defaults to forex",
			"XAUUSD",
			Forex,
		},
	}

	for _, test := range tests {
		category := Classify(test.instrument)
		if category != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, category)
		}
	}
}
