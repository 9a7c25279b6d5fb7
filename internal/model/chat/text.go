package chat

// BannerText seeds every transcript before the first submission.
const BannerText = "Session initialized. I am Fsociety-Speaker.\n\nReady for mobile mentoring. I will correct your English while we discuss business and mindset strategy."

// FallbackText replaces the mentor reply when the service cannot be reached or
// answers with something unparseable. It never carries error details.
const FallbackText = "Network interruption. Check your connection."
