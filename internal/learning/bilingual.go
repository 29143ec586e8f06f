// Copyright (c) 2026 SQLSage. All rights reserved.

package learning

// seedBilingualMappings is the fixed domain dictionary every new learning
// record is initialized with (English -> Turkish), extended over time by
// LM-proposed pairs that survive JSON parsing (C8).
func seedBilingualMappings() map[string]string {
	return map[string]string{
		"customer":  "müşteri",
		"order":     "sipariş",
		"product":   "ürün",
		"total":     "toplam",
		"average":   "ortalama",
		"count":     "sayı",
		"revenue":   "gelir",
		"date":      "tarih",
		"name":      "isim",
		"price":     "fiyat",
		"quantity":  "miktar",
		"status":    "durum",
		"category":  "kategori",
		"year":      "yıl",
		"month":     "ay",
		"week":      "hafta",
		"day":       "gün",
		"user":      "kullanıcı",
		"payment":   "ödeme",
		"invoice":   "fatura",
		"max":       "en fazla",
		"min":       "en az",
		"sum":       "toplam",
	}
}

// extendBilingual merges proposed pairs into existing without overwriting
// an already-learned mapping, keeping the store additive-only.
func extendBilingual(existing, proposed map[string]string) map[string]string {
	merged := make(map[string]string, len(existing)+len(proposed))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range proposed {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return merged
}
