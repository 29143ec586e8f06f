// Copyright (c) 2026 SQLSage. All rights reserved.

package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_FoldsAggregatePhrasesAndTurkishChars(t *testing.T) {
	n := Normalize("En Çok satış yapan müşteri")
	assert.Contains(t, n.Lower, "[MAX]")
	assert.Contains(t, n.ASCII, "musteri")
	assert.Equal(t, "En Çok satış yapan müşteri", n.Original)
}

func TestDetectName_AcceptsTurkishCharToken(t *testing.T) {
	got := detectName(Normalize("adı Çağla olan müşteriler"))
	assert.True(t, got.Found)
	assert.Equal(t, "çağla", got.Name)
}

func TestDetectName_AcceptsIsimliForm(t *testing.T) {
	got := detectName(Normalize("Ahmet isimli kullanıcıyı getir"))
	assert.True(t, got.Found)
	assert.Equal(t, "ahmet", got.Name)
}

func TestDetectDate_RelativeTurkish(t *testing.T) {
	got := detectDate(Normalize("son 7 gün içindeki siparişler"))
	assert.True(t, got.Found)
	assert.Contains(t, got.Predicate, "7 days")
}

func TestDetectDate_RelativeEnglish(t *testing.T) {
	got := detectDate(Normalize("orders from the last 2 weeks"))
	assert.True(t, got.Found)
	assert.Contains(t, got.Predicate, "2 weeks")
}

func TestDetectDate_AbsoluteTurkish(t *testing.T) {
	got := detectDate(Normalize("dün yapılan ödemeler"))
	assert.True(t, got.Found)
	assert.Contains(t, got.Predicate, "INTERVAL '1 day'")
}

func TestDetectDate_NoMatch(t *testing.T) {
	got := detectDate(Normalize("en iyi müşteriler kimler"))
	assert.False(t, got.Found)
}

func TestDetectComplexJoin_MaxAggregation(t *testing.T) {
	got := detectComplexJoin(Normalize("en fazla siparis veren musteri"))
	assert.True(t, got.Found)
	assert.Equal(t, JoinMaxAggregation, got.Tag)
}

func TestDetectComplexJoin_RevenueSourceAnalysis(t *testing.T) {
	got := detectComplexJoin(Normalize("gelir kaynağı analizi yap"))
	assert.True(t, got.Found)
	assert.Equal(t, JoinRevenueSourceAnalysis, got.Tag)
}

func TestDetectConversational_FollowUp(t *testing.T) {
	got := detectConversational(Normalize("peki bunun detayı nedir"))
	assert.True(t, got.ContextDependent)
}

func TestDetectBI_Churn(t *testing.T) {
	got := detectBI(Normalize("aylık churn oranı nedir"))
	assert.True(t, got.Found)
	assert.Equal(t, "churn", got.Tag)
}

func TestDetect_CombinesAllEnrichments(t *testing.T) {
	e := Detect("son 30 gün içinde en fazla siparis veren musteri kim")
	assert.True(t, e.Date.Found)
	assert.True(t, e.Join.Found)
}
