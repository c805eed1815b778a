package service

import "fmt"

func welcomeEmailTemplate(name, libraryURL, appName string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s!", appName)
	body := fmt.Sprintf(`Hi %s,

Your account is ready. Browse the catalog, start a free preview, or pick up where you left off:
%s

If you have questions, reach out to our support team.

Happy reading,
The %s Team`, name, libraryURL, appName)

	return subject, body
}

func purchaseReceiptTemplate(bookTitle, amount, reference, readURL, appName string) (string, string) {
	subject := fmt.Sprintf("Your receipt for %s", bookTitle)
	body := fmt.Sprintf(`Thanks for your purchase!

Book: %s
Amount: %s
Reference: %s

The book is now in your library:
%s

Best,
The %s Team`, bookTitle, amount, reference, readURL, appName)

	return subject, body
}

func subscriptionConfirmationTemplate(planName, amount, renewsOn, appName string) (string, string) {
	subject := fmt.Sprintf("You're now on %s %s", appName, planName)
	body := fmt.Sprintf(`Your %s subscription is active.

Amount: %s
Access until: %s

Every premium book in the catalog is now open to you.

Best,
The %s Team`, planName, amount, renewsOn, appName)

	return subject, body
}
