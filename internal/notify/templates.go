package notify

import "fmt"

func HotelReviewed(to, hotelName string, approved bool) Message {
	if approved {
		return Message{
			To:      to,
			Subject: "Your hotel has been approved",
			Body: fmt.Sprintf("Congratulations! %s has been approved and is now listed on Ghumna.\n\n"+
				"You can now manage rooms and reservations from the hotelier dashboard.", hotelName),
		}
	}
	return Message{
		To:      to,
		Subject: "Your hotel submission was rejected",
		Body: fmt.Sprintf("We are sorry, %s did not pass review.\n\n"+
			"Please contact support if you believe this was a mistake.", hotelName),
	}
}

func EventReviewed(to, title string, approved bool) Message {
	verdict := "declined"
	if approved {
		verdict = "approved"
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Your event has been %s", verdict),
		Body:    fmt.Sprintf("Your event %q has been %s by the Ghumna team.", title, verdict),
	}
}

func AvailabilityAnswered(to, hotelName, checkIn, checkOut string, approved bool) Message {
	if approved {
		return Message{
			To:      to,
			Subject: "Rooms are available for your dates",
			Body: fmt.Sprintf("Good news! %s has confirmed availability from %s to %s.\n\n"+
				"You can now complete your booking.", hotelName, checkIn, checkOut),
		}
	}
	return Message{
		To:      to,
		Subject: "Rooms are not available for your dates",
		Body: fmt.Sprintf("Unfortunately %s has no availability from %s to %s.\n\n"+
			"Please try different dates or another hotel.", hotelName, checkIn, checkOut),
	}
}
