package dto

type JobCardResponse struct {
	ID            string `json:"id"`
	SenderName    string `json:"sender_name"`
	CarBrand      string `json:"car_brand"`
	CarModel      string `json:"car_model"`
	Plate         string `json:"plate"`
	Complaint     string `json:"complaint"`
	CreatedAt     string `json:"created_at"`
	ScheduledDate string `json:"scheduled_date"`
	QueuePosition int    `json:"queue_position"`
	Status        string `json:"status"`
}

type JobCardListResponse struct {
	Date     string            `json:"date"`
	JobCards []JobCardResponse `json:"job_cards"`
}
