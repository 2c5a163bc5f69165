package payments

// All monetary arithmetic is int64 paisa. Tour pricing is stored in
// whole rupees and converted here exactly once.

const paisaPerRupee = 100

func RupeesToPaisa(rupees int64) int64 {
	return rupees * paisaPerRupee
}

// BaseAmount is the pre-GST charge in paisa.
func BaseAmount(pricePerHead, childRate int64, adults, children uint) int64 {
	return RupeesToPaisa(pricePerHead*int64(adults) + childRate*int64(children))
}

// GSTAmount rounds half-up in paisa.
func GSTAmount(base int64, gstPercent uint) int64 {
	return (base*int64(gstPercent) + 50) / 100
}

// ComputeExpectedAmount is the charge the provider must have captured,
// in paisa. Comparison against the captured amount is exact; an
// off-by-one paisa is a mismatch, never rounded away.
func ComputeExpectedAmount(pricePerHead, childRate int64, gstPercent uint, adults, children uint) int64 {
	base := BaseAmount(pricePerHead, childRate, adults, children)
	return base + GSTAmount(base, gstPercent)
}
