package handler

type ratesQuery struct {
	Base string `form:"base"`
}

type convertQuery struct {
	Base   string  `form:"base"`
	Amount float64 `form:"amount" binding:"required,gt=0"`
}
