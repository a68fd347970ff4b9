// Command seed resets the database to a small demo data set: one admin,
// three courses and two students with ledger entries.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/repository"
	"github.com/noah-isme/academy-api/internal/service"
	"github.com/noah-isme/academy-api/pkg/config"
	"github.com/noah-isme/academy-api/pkg/database"
	"github.com/noah-isme/academy-api/pkg/logger"
)

const studentPassword = "123456"

var resetTables = []string{"submissions", "assignments", "payments", "users", "courses"}

type seedEnrollment struct {
	course *models.Course
	start  string
	paid   int64
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	if err := seed(context.Background(), db, cfg, logr); err != nil {
		logr.Fatal("seed failed", zap.Error(err))
	}
}

func seed(ctx context.Context, db *sqlx.DB, cfg *config.Config, logr *zap.Logger) error {
	admin := cfg.Seed
	for _, table := range resetTables {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	users := repository.NewUserRepository(db)
	courses := repository.NewCourseRepository(db)

	adminHash, err := service.HashPassword(admin.AdminPassword)
	if err != nil {
		return err
	}
	if err := users.Create(ctx, &models.User{
		Username:     admin.AdminUsername,
		PasswordHash: adminHash,
		Role:         models.RoleAdmin,
		Name:         admin.AdminName,
		Email:        admin.AdminEmail,
	}); err != nil {
		return err
	}

	catalog := []*models.Course{
		{Title: "Full Stack Web Development", Description: "Learn complete web development with React, Node.js and more", Duration: "12 weeks", Price: 15000},
		{Title: "Data Science with Python", Description: "Master data science concepts with Python programming", Duration: "10 weeks", Price: 12000},
		{Title: "Mobile App Development", Description: "Build cross-platform mobile applications", Duration: "8 weeks", Price: 10000},
	}
	for _, course := range catalog {
		if err := courses.Create(ctx, course); err != nil {
			return err
		}
	}

	studentHash, err := service.HashPassword(studentPassword)
	if err != nil {
		return err
	}
	students := []struct {
		user        models.User
		enrollments []seedEnrollment
	}{
		{
			user: models.User{
				Username: "student1", Name: "Alice Johnson", Email: "alice@student.com",
				Phone: "+1234567890", Address: "123 Main St, City, State",
				Socials: models.Socials{Github: "https://github.com/alice", Linkedin: "https://linkedin.com/in/alice", Instagram: "https://instagram.com/alice"},
			},
			enrollments: []seedEnrollment{{course: catalog[0], start: "2024-01-15", paid: 5000}},
		},
		{
			user: models.User{
				Username: "student2", Name: "Bob Smith", Email: "bob@student.com",
				Phone: "+0987654321", Address: "456 Oak St, City, State",
				Socials: models.Socials{Github: "https://github.com/bob", Linkedin: "https://linkedin.com/in/bob", Instagram: "https://instagram.com/bob"},
			},
			enrollments: []seedEnrollment{
				{course: catalog[1], start: "2024-02-01", paid: 12000},
				{course: catalog[2], start: "2024-03-01", paid: 3000},
			},
		},
	}

	for i := range students {
		student := students[i].user
		code := fmt.Sprintf("%s%0*d", cfg.Students.IDPrefix, cfg.Students.IDDigits, i+1)
		student.StudentID = &code
		student.Role = models.RoleStudent
		student.PasswordHash = studentHash
		for _, e := range students[i].enrollments {
			start, err := time.Parse("2006-01-02", e.start)
			if err != nil {
				return err
			}
			fees := models.NewFeeSnapshot(e.course.Price)
			fees.SetPaid(e.paid)
			student.Enrollments = append(student.Enrollments, models.Enrollment{CourseID: e.course.ID, StartDate: start, Fees: fees})
		}
		if err := users.Create(ctx, &student); err != nil {
			return err
		}
		logr.Info("seeded student", zap.String("student_id", code), zap.String("username", student.Username))
	}

	logr.Info("seed completed",
		zap.String("admin", admin.AdminUsername),
		zap.Int("courses", len(catalog)),
		zap.Int("students", len(students)),
	)
	return nil
}
