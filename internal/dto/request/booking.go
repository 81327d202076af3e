package request

type BookTicketRequest struct {
	RequestID   string   `json:"request_id" validate:"required"`
	UserID      string   `json:"user_id" validate:"required"`
	ScheduleID  string   `json:"schedule_id" validate:"required"`
	MovieID     string   `json:"movie_id" validate:"required"`
	SeatIDs     []string `json:"seat_ids" validate:"required,min=1,unique,dive,required"`
	TotalAmount float64  `json:"total_amount" validate:"required,gt=0"`
}
