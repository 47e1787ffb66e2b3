package service

import (
	"fmt"

	"bengkel-bot/internal/models"

	"github.com/google/uuid"
)

const (
	msgWelcome = "Halo! Selamat datang di Bengkel D. Maju Jaya 🚗\n\nPilih layanan yang ingin kamu gunakan:"

	msgServiceIntro = "Berikut merupakan layanan yang tersedia di Bengkel D. Maju Jaya:\n" +
		"- Ganti Ban\n" +
		"- Fogging AC\n" +
		"- Overhaul\n" +
		"- Flushing AC\n" +
		"- Service Rem\n" +
		"- Spooring\n" +
		"- Balancing\n" +
		"- Ganti Oli\n" +
		"- Carbon Cleaning\n" +
		"- Tune Up Mesin\n\n" +
		"Silakan ketik pertanyaanmu tentang layanan di atas:"

	msgComplaintTemplate = "Silakan isi template berikut (salin & isi di kotak chat lalu kirim):\n\n" +
		"Nama: \n" +
		"Merek Mobil: \n" +
		"Jenis Mobil: \n" +
		"Keluhan: \n\n" +
		"Contoh, Merek Mobil: Toyota, Jenis Mobil: Avanza"

	msgOilIntro = "🛢️ Layanan Tanya Harga Oli — kategori tersedia:\n" +
		"- Castrol\n" +
		"- Repsol\n" +
		"- Shell\n" +
		"- Pertamina\n" +
		"- Top 1\n" +
		"- Mobil Oil\n" +
		"- Mix Oil\n\n" +
		"Silakan ketik pertanyaanmu tentang harga oli di atas:"

	msgCarIntro   = "💬 Mode 4 — Tanya harga barang/jasa umum untuk kategori *Mobil*.\nSilakan ketik pertanyaan Anda."
	msgTruckIntro = "🚌 Mode 5 — Tanya harga barang/jasa umum untuk kategori *Bis/Truk*.\nSilakan ketik pertanyaan Anda."

	msgNotUnderstood = "Maaf, pertanyaan tidak dapat dipahami."
	msgNoAnswer      = "Maaf, belum ada jawaban yang sesuai."

	msgAskPlate   = "Terima kasih. Silakan kirim nomor plat kendaraan:"
	msgAskConfirm = "Apakah Anda ingin saya buatkan kartu pekerjaan sekarang? Jika ya ketik: Ya, Buatkan."
	msgReconfirm  = "Ketik *Ya, Buatkan.* untuk menyimpan keluhan atau ketik *Batal* untuk membatalkan."
	msgBadFormat  = "⚠️ Format tidak dikenali. Pastikan mengisi template seperti:\n\n" +
		"Nama: <nama>\nMerek Mobil: <merek>\nJenis Mobil: <jenis>\nKeluhan: <isi keluhan>"
	msgCancelled     = "Pencatatan keluhan dibatalkan. Ketik /start untuk kembali ke menu."
	msgBookingFailed = "⚠️ Maaf, terjadi kesalahan server (database tidak tersedia). Silakan ketik *Ya, Buatkan.* lagi beberapa saat lagi."
	msgBookingFull   = "⚠️ Maaf, jadwal bengkel sudah penuh. Silakan hubungi bengkel secara langsung."

	// MsgServerError is sent when handling a message fails outright.
	MsgServerError = "⚠️ Maaf, terjadi kesalahan server. Silakan coba lagi."

	msgFallback = "Silakan pilih 1–5, klik tombol pada /start, atau ketik /start untuk mulai kembali."
)

type menuItem struct {
	label    string
	callback string
	digit    string
	mode     models.Mode
	intro    string
	markdown bool
}

var menu = []menuItem{
	{"1. Tanya Layanan Bengkel", "mode_1", "1", models.ModeService, msgServiceIntro, false},
	{"2. Pencatatan Keluhan - Buat Kartu Pekerjaan", "mode_2", "2", models.ModeComplaint, msgComplaintTemplate, false},
	{"3. Tanya Harga Oli", "mode_3", "3", models.ModeOilPrice, msgOilIntro, false},
	{"4. Tanya Harga Jasa Mobil", "mode_4", "4", models.ModeCarPrice, msgCarIntro, true},
	{"5. Tanya Harga Jasa Bis/Truk", "mode_5", "5", models.ModeTruckPrice, msgTruckIntro, true},
}

func menuKeyboard() [][]Button {
	rows := make([][]Button, 0, len(menu))
	for _, item := range menu {
		rows = append(rows, []Button{{Text: item.label, Data: item.callback}})
	}
	return rows
}

func menuByCallback(data string) (menuItem, bool) {
	for _, item := range menu {
		if item.callback == data {
			return item, true
		}
	}
	return menuItem{}, false
}

func menuByDigit(text string) (menuItem, bool) {
	for _, item := range menu {
		if item.digit == text {
			return item, true
		}
	}
	return menuItem{}, false
}

func bookingConfirmation(card *models.JobCard) string {
	return fmt.Sprintf("✅ Keluhan berhasil dicatat!\n\n"+
		"📅 *Tanggal datang:* %s\n"+
		"🔢 *Nomor antrean:* %d\n\n"+
		"Silakan membawa kendaraan Anda sesuai jadwal tersebut ya 😊",
		card.ScheduledDate.Format(models.DateLayout), card.QueuePosition)
}

func bookingRecorded(id uuid.UUID) string {
	return fmt.Sprintf("✅ Keluhan Anda sudah tercatat (ID: %s), tetapi jadwal belum dapat ditampilkan. "+
		"Tim bengkel akan menghubungi Anda untuk konfirmasi tanggal kedatangan.", id)
}

func operatorReloadNotice(id uuid.UUID, sess *models.Session) string {
	return fmt.Sprintf("📄 Kartu Pekerjaan (ID: %s) tersimpan, detail jadwal gagal dibaca.\n"+
		"Nama Pengirim : %s\n"+
		"Plat Nomor    : %s\n"+
		"Mohon cek jadwal dan hubungi pelanggan.",
		id, sess.Fields[models.FieldName], sess.Fields[models.FieldPlate])
}

func operatorInvoice(card *models.JobCard) string {
	return fmt.Sprintf("📄 Kartu Pekerjaan (ID: %s)\n"+
		"Nama Pengirim : %s\n"+
		"Merek Mobil   : %s\n"+
		"Jenis Mobil   : %s\n"+
		"Plat Nomor    : %s\n"+
		"Keluhan       : %s\n"+
		"Tanggal Input : %s\n"+
		"Tanggal Datang: %s\n"+
		"Nomor Antrian : %d\n"+
		"Status        : %s",
		card.ID, card.SenderName, card.CarBrand, card.CarModel, card.Plate, card.Complaint,
		card.CreatedAt.Format("2006-01-02T15:04:05"),
		card.ScheduledDate.Format(models.DateLayout),
		card.QueuePosition, card.Status)
}
